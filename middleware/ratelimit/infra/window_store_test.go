package infra

import (
	"sync"
	"testing"
	"time"
)

// manualClock permite controlar a passagem do tempo nos testes.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(epoch int64) *manualClock {
	return &manualClock{now: time.Unix(epoch, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestWindowStore_AdmitsUpToLimitThenRejects(t *testing.T) {
	clk := newManualClock(120)
	s := NewWindowStore(3, WithClock(clk))

	for i := 0; i < 3; i++ {
		dec := s.Take("abc123")
		if !dec.Allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
	}

	dec := s.Take("abc123")
	if dec.Allowed {
		t.Fatalf("expected rejection after limit")
	}
	if dec.Remaining != 0 {
		t.Fatalf("expected remaining=0 on rejection, got %d", dec.Remaining)
	}
	if dec.Limit != 3 {
		t.Fatalf("expected limit=3, got %d", dec.Limit)
	}
}

func TestWindowStore_RejectionDoesNotIncrement(t *testing.T) {
	clk := newManualClock(120)
	s := NewWindowStore(1, WithClock(clk))

	s.Take("abc123")
	s.Take("abc123")
	s.Take("abc123")

	// após as rejeições, a janela seguinte deve admitir normalmente
	clk.Advance(60 * time.Second)
	dec := s.Take("abc123")
	if !dec.Allowed {
		t.Fatalf("expected allowed in next window")
	}
}

func TestWindowStore_RemainingUsesPreIncrementCount(t *testing.T) {
	clk := newManualClock(120)
	s := NewWindowStore(3, WithClock(clk))

	want := []int{2, 1, 0}
	for i, w := range want {
		dec := s.Take("abc123")
		if dec.Remaining != w {
			t.Fatalf("request %d: expected remaining=%d, got %d", i+1, w, dec.Remaining)
		}
	}
}

func TestWindowStore_ResetIsEndOfEpochAlignedWindow(t *testing.T) {
	// 130s => janela [120, 180), reset em 180
	clk := newManualClock(130)
	s := NewWindowStore(3, WithClock(clk))

	dec := s.Take("abc123")
	if dec.Reset != 180 {
		t.Fatalf("expected reset=180, got %d", dec.Reset)
	}
}

func TestWindowStore_WindowRollover(t *testing.T) {
	clk := newManualClock(170)
	s := NewWindowStore(2, WithClock(clk))

	s.Take("abc123")
	s.Take("abc123")
	if dec := s.Take("abc123"); dec.Allowed {
		t.Fatalf("expected rejection in window N")
	}

	// 170 -> 181: nova janela, orçamento novo
	clk.Advance(11 * time.Second)
	dec := s.Take("abc123")
	if !dec.Allowed {
		t.Fatalf("expected allowed in window N+1")
	}
	if dec.Remaining != 1 {
		t.Fatalf("expected remaining=1 in fresh window, got %d", dec.Remaining)
	}
}

func TestWindowStore_KeysAreIsolated(t *testing.T) {
	clk := newManualClock(120)
	s := NewWindowStore(1, WithClock(clk))

	if dec := s.Take("tenant-a"); !dec.Allowed {
		t.Fatalf("expected tenant-a allowed")
	}
	if dec := s.Take("tenant-b"); !dec.Allowed {
		t.Fatalf("expected tenant-b allowed (separate bucket)")
	}
	if dec := s.Take("tenant-a"); dec.Allowed {
		t.Fatalf("expected tenant-a rejected")
	}
}

func TestWindowStore_CleanupRemovesStaleWindows(t *testing.T) {
	clk := newManualClock(120)
	s := NewWindowStore(10, WithClock(clk), WithCleanupEvery(0))

	s.Take("tenant-a")
	s.Take("tenant-b")
	if s.Len() != 2 {
		t.Fatalf("expected 2 live entries, got %d", s.Len())
	}

	clk.Advance(60 * time.Second)
	s.Take("tenant-a")
	s.Cleanup()

	if s.Len() != 1 {
		t.Fatalf("expected only current-window entry after cleanup, got %d", s.Len())
	}
}

package resend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSend_PostsToAPIWithBearer(t *testing.T) {
	var gotAuth string
	var gotMail Email
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotMail)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New("re_test_key", "no-reply@smarterbot.cl", WithEndpoint(srv.URL))

	err := s.Send(context.Background(), Email{
		To:      []string{"ana@example.com"},
		Subject: "hola",
		HTML:    "<p>hola</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer re_test_key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotMail.From != "no-reply@smarterbot.cl" {
		t.Fatalf("expected default from, got %q", gotMail.From)
	}
	if len(gotMail.To) != 1 || gotMail.To[0] != "ana@example.com" {
		t.Fatalf("expected recipient, got %v", gotMail.To)
	}
}

func TestSend_NotConfigured(t *testing.T) {
	s := New("", "no-reply@smarterbot.cl")
	err := s.Send(context.Background(), Email{To: []string{"x@example.com"}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := New("re_test_key", "no-reply@smarterbot.cl", WithEndpoint(srv.URL))
	if err := s.Send(context.Background(), Email{To: []string{"x@example.com"}}); err == nil {
		t.Fatalf("expected error for 422")
	}
}

func TestUserConfirmation_EscapesAndIncludesFields(t *testing.T) {
	mail, err := UserConfirmation(Contact{
		Name:    "Ana <script>",
		Email:   "ana@example.com",
		Message: "hola mundo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mail.HTML, "hola mundo") {
		t.Fatalf("expected message in body")
	}
	if strings.Contains(mail.HTML, "<script>") {
		t.Fatalf("expected HTML escaping of user input")
	}
	if mail.To[0] != "ana@example.com" {
		t.Fatalf("expected user as recipient, got %v", mail.To)
	}
}

func TestAdminNotification_UsesDashForMissingOptionals(t *testing.T) {
	mail, err := AdminNotification(Contact{
		Name:    "Ana",
		Email:   "ana@example.com",
		Message: "hola",
	}, "admin@smarterbot.cl", "smarterbot.cl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mail.To[0] != "admin@smarterbot.cl" {
		t.Fatalf("expected admin recipient, got %v", mail.To)
	}
	if !strings.Contains(mail.Subject, "Ana") {
		t.Fatalf("expected name in subject, got %q", mail.Subject)
	}
	if !strings.Contains(mail.HTML, "smarterbot.cl") {
		t.Fatalf("expected domain in body")
	}
}

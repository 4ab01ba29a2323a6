package infra

import "time"

// SystemClock implementa domain.Clock com o relógio do sistema.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

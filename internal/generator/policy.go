package generator

import (
	"time"

	"joke-cli/internal/apperr"
)

// Policy bounds the attempts made for one joke and spaces them out.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration // delay after the first failed attempt, doubled each time
	MaxDelay    time.Duration
}

// Delay returns how long to wait after failed attempt n (1-based) before the next one.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
		if d <= 0 {
			// overflow
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retryable reports whether another attempt may help after err.
func (p Policy) Retryable(err error) bool {
	return err != nil && apperr.KindOf(err).Transient()
}

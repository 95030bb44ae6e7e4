package channel

import (
	"math/rand/v2"
	"time"
)

// Backoff computes reconnection delays: min(base×2^attempt, cap) plus a
// positive random jitter so simultaneous clients do not retry in lockstep.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter time.Duration
}

// DefaultBackoff returns the stock reconnection policy.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:   time.Second,
		Cap:    30 * time.Second,
		Jitter: time.Second,
	}
}

func (b Backoff) withDefaults() Backoff {
	d := DefaultBackoff()
	if b.Base <= 0 {
		b.Base = d.Base
	}
	if b.Cap <= 0 {
		b.Cap = d.Cap
	}
	if b.Jitter <= 0 {
		b.Jitter = d.Jitter
	}
	return b
}

// Delay returns the wait before reconnect attempt n (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.withDefaults()

	d := b.Base
	for i := 0; i < attempt && d < b.Cap; i++ {
		d *= 2
	}
	if d > b.Cap {
		d = b.Cap
	}
	// Jitter is strictly positive: (0, Jitter].
	return d + time.Duration(rand.Int64N(int64(b.Jitter))+1)
}

package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter enforces per-host politeness delays. Each host gets its own
// token-bucket limiter sized from the effective delay; waiting respects
// context cancellation.
type RateLimiter struct {
	limiters     map[string]*rate.Limiter
	limitersMu   sync.Mutex
	defaultDelay time.Duration
	log          *logrus.Logger
}

// NewRateLimiter creates a RateLimiter with a fallback delay for hosts
// without a configured one.
func NewRateLimiter(defaultDelay time.Duration, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultDelay: defaultDelay,
		log:          log,
	}
}

// Wait blocks until the host's limiter grants a token or ctx is cancelled.
// minDelay <= 0 falls back to the default delay; a zero effective delay means
// no limiting for the host.
func (rl *RateLimiter) Wait(ctx context.Context, host string, minDelay time.Duration) error {
	if minDelay <= 0 {
		minDelay = rl.defaultDelay
	}
	if minDelay <= 0 {
		return nil
	}

	limiter := rl.limiterFor(host, minDelay)
	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	if waited := time.Since(start); waited > 50*time.Millisecond {
		rl.log.WithFields(logrus.Fields{"host": host, "waited": waited}).Debug("Rate limit applied")
	}
	return nil
}

// limiterFor returns the host's limiter, creating it on first use. A changed
// delay for a known host adjusts the existing limiter in place so concurrent
// waiters keep their queue position.
func (rl *RateLimiter) limiterFor(host string, minDelay time.Duration) *rate.Limiter {
	rl.limitersMu.Lock()
	defer rl.limitersMu.Unlock()

	want := rate.Every(minDelay)
	limiter, exists := rl.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(want, 1)
		rl.limiters[host] = limiter
		return limiter
	}
	if limiter.Limit() != want {
		limiter.SetLimit(want)
	}
	return limiter
}

// Len returns the number of tracked hosts.
func (rl *RateLimiter) Len() int {
	rl.limitersMu.Lock()
	defer rl.limitersMu.Unlock()
	return len(rl.limiters)
}

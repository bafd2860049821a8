package printone

import (
	"context"
	"time"
)

// PollOption tunes the polling of a single call.
type PollOption func(*pollPolicy)

// WithoutPolling makes the call act on the current state without waiting.
func WithoutPolling() PollOption {
	return func(p *pollPolicy) {
		p.enabled = false
	}
}

// MaxPollAttempts caps the number of re-checks of a single call.
func MaxPollAttempts(n int) PollOption {
	return func(p *pollPolicy) {
		p.attempts = n
	}
}

type pollPolicy struct {
	enabled  bool
	interval time.Duration
	attempts int
}

func (s *shared) pollPolicy(opts []PollOption) pollPolicy {
	p := pollPolicy{
		enabled:  true,
		interval: s.cfg.PollInterval,
		attempts: s.cfg.PollAttempts,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// waitWhile re-fetches while pending reports true and attempts remain. Running
// out of attempts is not an error: the caller goes on with its action and
// settled reports whether the wait ended because pending turned false.
func waitWhile(ctx context.Context, p pollPolicy, pending func() bool, refresh func(context.Context) error) (settled bool, err error) {
	for attempt := 0; p.enabled && pending() && attempt < p.attempts; attempt++ {
		if err := sleep(ctx, p.interval); err != nil {
			return false, err
		}
		if err := refresh(ctx); err != nil {
			return false, err
		}
	}
	return !pending(), nil
}

// retryOnNotFound repeats call while it fails with a 404 and returns a
// *TimeoutError once the attempts are used up. Other errors end the loop.
func retryOnNotFound[T any](ctx context.Context, op string, p pollPolicy, call func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := call(ctx)
		if err == nil {
			return v, nil
		}
		if !p.enabled || !IsNotFound(err) {
			return zero, err
		}
		if attempt >= p.attempts {
			return zero, &TimeoutError{Op: op, Attempts: attempt + 1, Last: err}
		}
		if err := sleep(ctx, p.interval); err != nil {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

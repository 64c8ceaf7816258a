package retry

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Settings configure how a failed warehouse query is re-attempted.
// MaxRetries is the total attempt budget, so 1 never retries.
type Settings struct {
	InitialBackoff time.Duration
	Multiplier     int
	MaxBackoff     time.Duration
	MaxRetries     int
}

func (s Settings) Verify() error {
	if s.InitialBackoff <= 0 {
		return errors.Newf("initial backoff must be > 0, got %s", s.InitialBackoff)
	}
	if s.Multiplier < 1 {
		return errors.Newf("backoff multiplier must be >= 1, got %d", s.Multiplier)
	}
	if s.MaxBackoff > 0 && s.InitialBackoff > s.MaxBackoff {
		return errors.Newf("initial backoff %s exceeds max backoff %s", s.InitialBackoff, s.MaxBackoff)
	}
	return nil
}

// Backoff is how long to wait after the given failed attempt, counting from 1.
func (s Settings) Backoff(attempt int) time.Duration {
	d := s.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= time.Duration(s.Multiplier)
		if s.MaxBackoff > 0 && d >= s.MaxBackoff {
			return s.MaxBackoff
		}
	}
	if s.MaxBackoff > 0 && d > s.MaxBackoff {
		return s.MaxBackoff
	}
	return d
}

func (s Settings) attempts() int {
	if s.MaxRetries < 1 {
		return 1
	}
	return s.MaxRetries
}

// Do calls fn until it succeeds, the attempt budget is spent or ctx is done.
// The error from the last attempt is returned.
func Do(ctx context.Context, s Settings, fn func(ctx context.Context) error) error {
	if err := s.Verify(); err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= s.attempts() {
			return err
		}
		t := time.NewTimer(s.Backoff(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.WithSecondaryError(ctx.Err(), err)
		case <-t.C:
		}
	}
}

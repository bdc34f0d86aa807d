package retry

import (
	"context"
	"time"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/logger"
)

// Policy is a bounded exponential backoff schedule. The caller owns the
// budget; collaborators are invoked without any retry logic of their own.
type Policy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultPolicy retries twice, with delays doubling from one second and
// capped at ten.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    2,
		InitialDelay:  1 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Do runs fn up to MaxRetries+1 times, sleeping between attempts. Permanent
// failures (per errs.IsRetryable) and context expiry stop the loop early.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	delay := p.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 0 {
				logger.Info(ctx, "operation succeeded after retry", "operation", op, "attempt", attempt+1)
			}
			return nil
		}

		if !errs.IsRetryable(lastErr) {
			logger.Warn(ctx, "operation failed permanently", "operation", op, "attempt", attempt+1, "error", lastErr)
			return lastErr
		}
		if attempt == p.MaxRetries {
			break
		}

		logger.Warn(ctx, "operation failed, retrying", "operation", op,
			"attempt", attempt+1, "delay", delay.String(), "error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * p.BackoffFactor)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	logger.Error(ctx, "operation exhausted retries", "operation", op, "attempts", p.MaxRetries+1, "error", lastErr)
	return lastErr
}

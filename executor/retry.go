package executor

import (
	"context"
	"time"

	"github.com/meridian-erp/automation/logger"
	"github.com/meridian-erp/automation/model"
	"go.uber.org/zap"
)

// RetryController wraps a single action attempt with bounded retry and a
// fixed inter-attempt delay. The action's timeout, when set, bounds each
// individual attempt; a timed-out attempt is retryable like any other
// failure.
type RetryController struct {
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryController() *RetryController {
	return &RetryController{sleep: sleepWithContext}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run attempts the action up to RetryCount times. Success short-circuits the
// remaining attempts; the last failure is propagated to the caller.
func (rc *RetryController) Run(ctx context.Context, action model.ActionConfig, attempt func(ctx context.Context) (map[string]any, error)) (map[string]any, error) {
	attempts := action.RetryCount
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Duration(action.RetryDelaySeconds) * time.Second
	var lastErr error
	for try := 1; try <= attempts; try++ {
		if try > 1 {
			if err := rc.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		result, err := rc.attemptOnce(ctx, action, attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		logger.Debug("action attempt failed",
			zap.String("action", action.Id),
			zap.Int("attempt", try),
			zap.Int("maxAttempts", attempts),
			zap.Error(err))
	}
	return nil, lastErr
}

func (rc *RetryController) attemptOnce(ctx context.Context, action model.ActionConfig, attempt func(ctx context.Context) (map[string]any, error)) (map[string]any, error) {
	if action.TimeoutSeconds <= 0 {
		return attempt(ctx)
	}
	timeout := time.Duration(action.TimeoutSeconds) * time.Second
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result map[string]any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := attempt(attemptCtx)
		done <- outcome{result: result, err: err}
	}()
	select {
	case out := <-done:
		if out.err != nil && attemptCtx.Err() == context.DeadlineExceeded {
			return nil, model.ActionTimeoutError{ActionId: action.Id, Timeout: timeout}
		}
		return out.result, out.err
	case <-attemptCtx.Done():
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, model.ActionTimeoutError{ActionId: action.Id, Timeout: timeout}
		}
		return nil, attemptCtx.Err()
	}
}

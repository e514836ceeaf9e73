package kube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// TimeoutError reports an expired bounded wait together with the last state
// observed before the deadline, so the failure names what the cluster was
// doing when time ran out.
type TimeoutError struct {
	Stage        string
	LastObserved string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s (last observed: %s)", e.Stage, e.LastObserved)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// Condition is evaluated once per poll tick against freshly fetched state.
// It reports whether the awaited state has been reached and describes what it
// observed this tick.
type Condition func(ctx context.Context) (done bool, observed string, err error)

// PollUntil evaluates cond at the given interval until it reports done,
// returns an error, or the timeout expires. The first evaluation happens
// immediately. On expiry the returned error is a *TimeoutError carrying the
// last observation; a condition error aborts the wait and is returned as-is.
func PollUntil(ctx context.Context, stage string, interval, timeout time.Duration, cond Condition) error {
	lastObserved := "nothing observed"

	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		done, observed, err := cond(ctx)
		if observed != "" {
			lastObserved = observed
		}
		return done, err
	})
	if err == nil {
		return nil
	}

	// A cancelled parent context is the caller's abort, not a poll timeout.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if wait.Interrupted(err) {
		return &TimeoutError{Stage: stage, LastObserved: lastObserved}
	}
	return err
}

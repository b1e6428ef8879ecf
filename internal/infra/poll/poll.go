package poll

import (
	"context"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
)

type Decision int

const (
	// Retry means the resource is still being provisioned, poll again.
	Retry Decision = iota
	// Ready means the condition is satisfied.
	Ready
	// Fatal means the resource entered a state it cannot recover from.
	Fatal
)

// Await polls fn on a fixed interval until it reports Ready, reports
// Fatal (the returned error is propagated), or the timeout ceiling
// elapses, in which case a TimeoutError named after operation is
// returned. The wait between polls is timer-based.
func Await(ctx context.Context, operation string, interval, timeout time.Duration, fn func(ctx context.Context) (Decision, error)) error {
	deadline := time.Now().Add(timeout)
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		decision, err := fn(ctx)
		switch decision {
		case Ready:
			return nil
		case Fatal:
			return err
		}
		if err != nil {
			// a failed status fetch aborts the wait
			return err
		}

		if time.Now().Add(interval).After(deadline) {
			return errs.TimeoutError{Operation: operation, Waited: timeout.String()}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

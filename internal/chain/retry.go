package chain

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
)

const defaultBackoff = 100 * time.Millisecond

// RetryPolicy retries RPC calls with a doubling backoff.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Do runs fn, retrying failed calls up to MaxRetries times. A not-found
// answer from the node and context errors are returned without retry.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delay := p.Backoff
	if delay <= 0 {
		delay = defaultBackoff
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil || !retryable(err) || attempt >= retries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ethereum.NotFound):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

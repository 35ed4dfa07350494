package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const retryInitialInterval = 100 * time.Millisecond

// Retry runs op with exponential backoff until it succeeds or window elapses.
// A zero window means a single attempt. Each failed attempt is logged at WARN with what.
func Retry[T any](ctx context.Context, window time.Duration, logger *slog.Logger, what string, op func() (T, error)) (T, error) {
	if window <= 0 {
		return op()
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval
	return backoff.Retry(ctx, backoff.Operation[T](op),
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(window),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.WarnContext(ctx, "connection attempt failed, retrying",
				slog.String("target", what), slog.Any("error", err), slog.Duration("next", next))
		}),
	)
}

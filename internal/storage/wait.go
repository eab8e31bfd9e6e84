package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"lakeboot/internal/domain"
)

// WaitReady polls the storage endpoint every interval until it answers a
// bucket probe or ctx is done. Any service response, including a missing
// bucket or an authorization error, counts as ready.
func WaitReady(ctx context.Context, client domain.BucketManager, bucket string, interval time.Duration, logger zerolog.Logger) (int, error) {
	if interval <= 0 {
		interval = time.Second
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return attempt - 1, domain.ErrStorageUnavailable(client.Endpoint(), fmt.Errorf("gave up after %d attempts: %w", attempt-1, lastErr))
		}
		_, err := client.BucketExists(ctx, bucket)
		if err == nil || !IsUnavailable(err) {
			logger.Debug().Int("attempt", attempt).Str("endpoint", client.Endpoint()).Msg("storage answered")
			return attempt, nil
		}
		lastErr = err
		logger.Info().Int("attempt", attempt).Err(err).Msg("storage not ready")
	}
}

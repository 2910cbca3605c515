package gatekeep

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// Backoff computes classified retry delays for remote grid operations.
//
// Rate-limit and outage errors grow exponentially with up to 30%
// random jitter, so concurrent clients spread out instead of hammering
// the service in lockstep. Everything else backs off linearly.
type Backoff struct {
	BaseDelay time.Duration // BaseDelay is the delay of the first retry.
	attempt   int           // attempt counts the delays handed out so far.
}

// Next returns the delay to wait before the next attempt, based on the
// error of the one that just failed.
func (b *Backoff) Next(err error) time.Duration {
	b.attempt++

	if IsThrottleError(err) {
		exp := b.BaseDelay << (b.attempt - 1)
		jitter := time.Duration(rand.Float64() * 0.3 * float64(exp))
		return exp + jitter
	}

	return b.BaseDelay * time.Duration(b.attempt)
}

// sleep waits for the given duration without holding any resource.
// Returns false if the context was cancelled before the deadline.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Retry runs op with the default retry policy.
func Retry(ctx context.Context, label string, op func() error) error {
	return RetryWith(ctx, label, op, MAX_RETRIES, BASE_RETRY_DELAY)
}

// RetryWith runs op up to maxAttempts times with classified backoff.
//
// Authentication and permission failures (401, 403) are returned
// immediately: retrying them only burns quota and delays the
// user-visible failure. So are malformed requests and missing
// resources (400, 404), which no retry can fix. Rate limits and
// service outages (429, 503) retry with jittered exponential backoff;
// any other error retries with linear backoff. After exhausting
// maxAttempts the final error is returned.
func RetryWith(ctx context.Context, label string, op func() error, maxAttempts int, baseDelay time.Duration) (err error) {
	backoff := Backoff{BaseDelay: baseDelay}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}

		if IsAuthError(err) {
			log.Error().Str("Op", label).Err(err).Msg("Auth error, not retrying.")
			return err
		}

		if IsClientError(err) {
			log.Error().Str("Op", label).Err(err).Msg("Client error, not retrying.")
			return err
		}

		if attempt == maxAttempts {
			log.Error().Str("Op", label).Int("Attempts", attempt).Err(err).Msg("Retries exhausted.")
			return err
		}

		delay := backoff.Next(err)
		log.Warn().
			Str("Op", label).
			Int("Attempt", attempt).
			Int("Max", maxAttempts).
			Dur("Delay", delay).
			Err(err).
			Msg("Retrying remote operation.")

		if !sleep(ctx, delay) {
			// Shutdown mid-backoff; surface the last remote error.
			return err
		}
	}

	return err
}

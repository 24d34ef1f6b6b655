package middleware

import (
	"net/http"
	"strconv"
	"time"

	"wellspring/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimit allows each client IP at most limit requests per fixed window,
// counted in Redis so the limit holds across instances. Redis failures let
// the request through. A window under one second or a limit below one
// cannot be enforced, so the limiter is not installed.
func RateLimit(client *redis.Client, limit int, window time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	if window < time.Second || limit < 1 {
		logger.Error().
			Int("limit", limit).
			Dur("window", window).
			Msg("invalid rate limit settings, rate limiting disabled")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			bucket := time.Now().UnixNano() / int64(window)
			key := "ratelimit:" + clientIP(r) + ":" + strconv.FormatInt(bucket, 10)

			pipe := client.TxPipeline()
			incr := pipe.Incr(r.Context(), key)
			pipe.Expire(r.Context(), key, window)
			if _, err := pipe.Exec(r.Context()); err != nil {
				logger.Error().Err(err).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			count := incr.Val()
			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(limit) {
				logger.Warn().Str("client", clientIP(r)).Str("path", r.URL.Path).Msg("rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeError(w, http.StatusTooManyRequests, model.ErrCodeRateLimited, model.ErrRateLimited.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

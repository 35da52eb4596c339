package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog/log"
)

const rateLimitWindow = time.Minute

// RateLimit returns a redis-backed fixed-window rate limiter keyed by
// client IP. When redis is unreachable the limiter fails open: upstream
// quota problems should not take the whole service down with them.
func RateLimit(client *redis.Client, requestsPerMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil || requestsPerMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			key := "ratelimit:" + clientIP

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable, failing open")
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(r.Context(), key, rateLimitWindow)
			}

			if count > int64(requestsPerMinute) {
				log.Warn().
					Str("client_ip", clientIP).
					Str("url", r.URL.String()).
					Int64("count", count).
					Msg("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)

				errorResponse := map[string]interface{}{
					"error": map[string]interface{}{
						"code":    "RATE_LIMIT",
						"message": "Rate limit exceeded. Please try again later.",
					},
				}
				if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
					http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the real client IP address
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		// Take the first IP in the chain
		if commaIndex := strings.IndexByte(forwardedFor, ','); commaIndex > 0 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return forwardedFor
	}

	// Check X-Real-IP header
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	// Fall back to remote address
	return r.RemoteAddr
}

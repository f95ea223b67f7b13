package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/cache"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/metrics"
	"gorecords/internal/pkg/response"
)

// RateLimiter aplica uma janela fixa de limit requisições por IP a cada window.
// Falhas do Redis não bloqueiam o tráfego.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rate-limit:" + clientIP(r)

			count, err := client.Incr(r.Context(), key, window)
			if err != nil {
				log.Warn("Rate limiter indisponível, requisição liberada", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(limit) {
				m.RecordRateLimited()
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				response.Error(w, r, log, apperror.NewRateLimitError(limit))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

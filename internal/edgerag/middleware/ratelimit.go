package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/edge-rag/internal/edgerag/metrics"
	"github.com/kart-io/edge-rag/internal/edgerag/ratelimit"
)

// rateLimitMessage is the body sent with every 429.
const rateLimitMessage = "Rate limit exceeded. Please try again later."

// RateLimit gates requests through the fixed-window limiter, keyed by the
// request path so every route gets its own budget. Counter store failures
// admit the request: the limiter protects upstream cost, it is not a
// security boundary.
func RateLimit(limiter *ratelimit.Limiter, keyPrefix string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyPrefix + "_" + c.Request.URL.Path

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			m.IncLimiterError()
			logger.Warnw("rate limit store unavailable, admitting request",
				"key", key,
				"error", err.Error(),
			)
		}

		if !allowed {
			m.IncLimiterDenied()
			c.String(http.StatusTooManyRequests, rateLimitMessage)
			c.Abort()
			return
		}

		m.IncLimiterAllowed()
		c.Next()
	}
}

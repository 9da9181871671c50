package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/printstudio/internal/metrics"
	"golang.org/x/time/rate"
)

// RateLimit enforces a token bucket per editor (or per client IP before
// login). rps <= 0 disables limiting.
func RateLimit(name string, rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	var limiters sync.Map // key -> *rate.Limiter
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if editor := EditorID(c); editor != "" {
			key = "editor:" + editor
		}

		v, _ := limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), burst))
		if !v.(*rate.Limiter).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues(name).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}

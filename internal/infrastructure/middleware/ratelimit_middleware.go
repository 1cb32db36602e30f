package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleTimeout 超过该时长未出现的 IP 从表中清除
const idleTimeout = 30 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit 按客户端 IP 的令牌桶限流，超限返回 429
// burst <= 0 时不限流
func RateLimit(every time.Duration, burst int) gin.HandlerFunc {
	if burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	clients := make(map[string]*clientLimiter)
	var mu sync.Mutex

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		cl, exists := clients[ip]
		if !exists {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		allowed := cl.limiter.AllowN(now, 1)
		for k, other := range clients {
			if now.Sub(other.lastSeen) > idleTimeout {
				delete(clients, k)
			}
		}
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Please wait a minute and try again."})
			return
		}
		c.Next()
	}
}

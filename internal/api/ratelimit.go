package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/Adda-Baaj/arogya-feed/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	clientIdleTTL = 5 * time.Minute
	sweepInterval = time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out one token bucket per client IP. Idle clients are
// swept on the request path, so no background goroutine is needed.
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
	log       logger.Logger
}

func newIPLimiter(rps float64, burst int, log logger.Logger) *ipLimiter {
	return &ipLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
		log:     logger.Ensure(log),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > clientIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// middleware rejects requests over the per-IP budget with 429.
func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.allow(ip) {
			l.log.WarnObj("rate limit exceeded", "rate_limited", map[string]any{
				"ip":   ip,
				"path": c.FullPath(),
			})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Decision is the admission-control verdict for one request. Limit,
// Remaining and ResetAt are surfaced to the caller even on rejection so
// clients can schedule their retry.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateGate admits or rejects requests keyed by caller identity.
type RateGate interface {
	Allow(identifier string) Decision
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type LimiterGate struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewLimiterGate(r rate.Limit, b int) *LimiterGate {
	gate := &LimiterGate{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}

	// Clean up old visitors every minute
	go gate.cleanupVisitors()

	return gate
}

func (g *LimiterGate) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		g.mtx.Lock()
		for id, v := range g.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(g.visitors, id)
			}
		}
		g.mtx.Unlock()
	}
}

func (g *LimiterGate) getVisitor(identifier string) *rate.Limiter {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	v, exists := g.visitors[identifier]
	if !exists {
		limiter := rate.NewLimiter(g.rate, g.burst)
		g.visitors[identifier] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (g *LimiterGate) Allow(identifier string) Decision {
	limiter := g.getVisitor(identifier)
	now := time.Now()
	allowed := limiter.Allow()

	remaining := int(limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	resetAt := now
	if remaining == 0 && g.rate > 0 {
		resetAt = now.Add(time.Duration(float64(time.Second) / float64(g.rate)))
	}

	return Decision{
		Allowed:   allowed,
		Limit:     g.burst,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// RateLimit consults the gate before any work is done, keyed by the
// authenticated user id when present and client IP otherwise.
func RateLimit(gate RateGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		if userID, exists := c.Get("user_id"); exists {
			if id, ok := userID.(string); ok && id != "" {
				identifier = id
			}
		}

		decision := gate.Allow(identifier)

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Default rate limiters
var (
	generalGate = NewLimiterGate(rate.Every(time.Second), 10) // 10 requests per second
	confirmGate = NewLimiterGate(rate.Every(time.Minute), 5)  // 5 confirms per minute
)

func GeneralRateLimit() gin.HandlerFunc {
	return RateLimit(generalGate)
}

func ConfirmRateLimit() gin.HandlerFunc {
	return RateLimit(confirmGate)
}

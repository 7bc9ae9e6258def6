package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/baylot/raffle-api/internal/api/handler/v1/response"
)

// Buckets untouched for this long are dropped on the next sweep.
const defaultIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	visitors  map[string]*visitor
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}

	return &RateLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   defaultIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
		visitors:  make(map[string]*visitor),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.idleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter
}

// Handle rejects a request with 429 once its client has used up its bucket.
// A zero rate disables limiting.
func (rl *RateLimiter) Handle() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if rl.limit <= 0 {
			ctx.Next()
			return
		}

		ip := ctx.ClientIP()
		if !rl.limiter(ip).Allow() {
			zap.L().Warn("rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", ctx.FullPath()))
			response.RenderErr(ctx, response.ErrTooManyRequests())

			return
		}

		ctx.Next()
	}
}

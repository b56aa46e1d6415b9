package middlewares

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Yo-Self/menu-mestre-facil-sub001/pkg/cache"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

// CallRateLimiter membatasi pembuatan waiter call per IP + restoran.
// Limiter yang tidak dipakai selama idleTTL dibuang dari cache.
type CallRateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters *cache.TTLCache[string, *rate.Limiter]
}

const idleTTL = 10 * time.Minute

func NewCallRateLimiter(perSecond float64, burst int) *CallRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &CallRateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: cache.New[string, *rate.Limiter](idleTTL, time.Minute),
	}
}

func (rl *CallRateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters.Get(key)
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
	}
	// Set ulang supaya TTL dihitung dari pemakaian terakhir
	rl.limiters.Set(key, l)
	return l
}

// Allow is exposed for callers that build the key themselves.
func (rl *CallRateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// RateLimit tidak memakai table_number dari body: nilai itu dikontrol client,
// jadi mengganti nomor meja tidak boleh memberi kuota baru.
func (rl *CallRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s|%s", c.ClientIP(), c.Param("restaurant_id"))
		if !rl.Allow(key) {
			utils.InfoLogger.Printf("Rate limit hit for %s", key)
			c.JSON(http.StatusTooManyRequests, utils.JSONResponse{
				Status:  false,
				Message: "Terlalu banyak panggilan, silakan tunggu beberapa saat",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *CallRateLimiter) Close() {
	rl.limiters.Close()
}

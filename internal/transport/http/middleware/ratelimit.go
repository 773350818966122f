package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "pharma-scanner/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, "too many requests"))
	}
}

// 每 IP 桶的回收参数：超过 maxBuckets 时先清闲置过 idleTTL 的，
// 还是超就整张表重建（宁可放过也不让表无限涨）。
const (
	maxBuckets = 10000
	idleTTL    = 10 * time.Minute
)

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitPerIP 每 IP 限速（登录/注册接口防爆破）
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	return perIPLimiter(rps, burst, maxBuckets, idleTTL)
}

func perIPLimiter(rps rate.Limit, burst, capacity int, ttl time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*ipBucket)

	evict := func(now time.Time) {
		for ip, b := range buckets {
			if now.Sub(b.seen) > ttl {
				delete(buckets, ip)
			}
		}
		if len(buckets) >= capacity {
			buckets = make(map[string]*ipBucket)
		}
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()
		mu.Lock()
		b, ok := buckets[ip]
		if !ok {
			if len(buckets) >= capacity {
				evict(now)
			}
			b = &ipBucket{lim: rate.NewLimiter(rps, burst)}
			buckets[ip] = b
		}
		b.seen = now
		mu.Unlock()
		if b.lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, "too many requests"))
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/metrics"
	"github.com/use-agent/rankcheck/models"
	"golang.org/x/time/rate"
)

// idleQuota is how long a client's bucket survives without lookups.
const idleQuota = time.Hour

// providerQuota meters provider spend: every lookup a client submits costs one
// provider search, so each client IP draws from its own token bucket.
type providerQuota struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	lim  *rate.Limiter
	used time.Time
}

func newProviderQuota(cfg config.RateLimitConfig) *providerQuota {
	return &providerQuota{
		limit:     rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.Burst,
		buckets:   make(map[string]*clientBucket),
		lastSweep: time.Now(),
	}
}

// spend takes one search from client's bucket at now. When the bucket is
// empty it reports how long until the next search is affordable.
func (q *providerQuota) spend(client string, now time.Time) (bool, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if now.Sub(q.lastSweep) >= idleQuota {
		for id, b := range q.buckets {
			if now.Sub(b.used) >= idleQuota {
				delete(q.buckets, id)
			}
		}
		q.lastSweep = now
	}

	b, ok := q.buckets[client]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(q.limit, q.burst)}
		q.buckets[client] = b
	}
	b.used = now

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (q *providerQuota) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buckets)
}

// RateLimit refuses lookups from a client that has spent its provider quota.
// Refusals are answered with 429, a Retry-After hint in whole seconds, and
// never reach the search-results provider.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return rateLimit(newProviderQuota(cfg), time.Now)
}

func rateLimit(q *providerQuota, clock func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := q.spend(c.ClientIP(), clock())
		if ok {
			c.Next()
			return
		}

		metrics.ThrottledLookups.Inc()
		if wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		}
		err := models.NewLookupError(models.ErrCodeRateLimited, "lookup quota exceeded, retry later", nil)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   err.ToDetail(),
		})
	}
}

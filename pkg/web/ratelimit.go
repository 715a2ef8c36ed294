package web

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	limiterCacheSize = 10000
	limiterIdleTTL   = 10 * time.Minute
)

// ipLimiter keeps one token bucket per client IP. Buckets are dropped ten
// minutes after creation and start full again.
type ipLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *expirable.LRU[string, *rate.Limiter]
}

// newIPLimiter allows perSecond requests with the given burst. A
// non-positive rate disables limiting.
func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &ipLimiter{limit: rate.Limit(perSecond), burst: burst}
	if perSecond > 0 {
		l.buckets = expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterIdleTTL)
	}
	return l
}

// Allow consumes one token of ip.
func (l *ipLimiter) Allow(ip string) bool {
	if l.buckets == nil {
		return true
	}
	b, ok := l.buckets.Get(ip)
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(ip, b)
	}
	return b.Allow()
}

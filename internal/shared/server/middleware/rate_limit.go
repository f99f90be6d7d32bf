package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"vendoreval-backend/internal/shared/metrics"
	"vendoreval-backend/internal/shared/server/respond"
)

const (
	// GroupDefault applies to every route without a dedicated rule.
	GroupDefault = "DEFAULT"
	// GroupSubmit covers response saves, submissions and reconciliation runs.
	GroupSubmit = "SUBMIT"

	bucketIdleTTL = 10 * time.Minute
)

// RateLimitRule is a token bucket refilled at Rate tokens per second.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one bucket per caller, vendor and group. Buckets nobody
// touched for bucketIdleTTL are evicted.
type RateLimiter struct {
	mu      sync.Mutex
	buckets *gocache.Cache
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		buckets: gocache.New(bucketIdleTTL, 2*bucketIdleTTL),
		now:     now,
	}
}

// SubmissionGroupFor maps write routes of the submission workflow to GroupSubmit.
// Double-clicked saves from the same caller are absorbed by the bucket burst.
func SubmissionGroupFor(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case c.Request.Method == http.MethodPut && strings.HasSuffix(path, "/responses"):
		return GroupSubmit
	case c.Request.Method == http.MethodPost && (strings.HasSuffix(path, "/submit") || strings.HasSuffix(path, "/reconcile")):
		return GroupSubmit
	default:
		return GroupDefault
	}
}

func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = GroupDefault
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		allowed, retryAfter := cfg.Limiter.Allow(limitKey(c, group), rule)
		if allowed {
			c.Next()
			return
		}
		metrics.IncRateLimited(group)

		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := max(int(math.Ceil(float64(retryAfterMs)/1000.0)), 1)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down", gin.H{
			"retryAfterMs": retryAfterMs,
			"group":        group,
		})
	}
}

// limitKey scopes a bucket to the caller and, on pair routes, the vendor
// being acted for, so an admin working through several vendors is not
// throttled across them.
func limitKey(c *gin.Context, group string) string {
	principal := strings.TrimSpace(UserIDFromContext(c))
	if principal == "" {
		principal = strings.TrimSpace(c.ClientIP())
	}
	parts := []string{principal, group}
	if vendorID := c.Param("vendorId"); vendorID != "" {
		parts = append(parts, vendorID)
	}
	return strings.Join(parts, "|")
}

// Allow takes a token from the bucket under key and reports how long to wait
// when none is left.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := &rateBucket{tokens: float64(rule.Burst), last: now}
	if cached, ok := l.buckets.Get(key); ok {
		bucket = cached.(*rateBucket)
	}
	defer l.buckets.SetDefault(key, bucket)

	if elapsed := now.Sub(bucket.last).Seconds(); elapsed > 0 {
		bucket.tokens = math.Min(float64(rule.Burst), bucket.tokens+elapsed*rule.Rate)
		bucket.last = now
	}
	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0
	}
	waitSec := max((1-bucket.tokens)/rule.Rate, 0)
	return false, time.Duration(math.Ceil(waitSec*1000.0)) * time.Millisecond
}

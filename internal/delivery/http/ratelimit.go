package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/pos-core/pkg/logger"
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts requests per identifier in a sliding window
type Limiter interface {
	Allow(ctx context.Context, identifier string) (Decision, error)
}

// RedisLimiter implements rate limiting using Redis sorted sets, so every
// instance behind a load balancer shares the same window
type RedisLimiter struct {
	redis       *redis.Client
	prefix      string
	maxRequests int
	window      time.Duration
}

// NewRedisLimiter creates a new rate limiter
func NewRedisLimiter(client *redis.Client, prefix string, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, prefix: prefix, maxRequests: maxRequests, window: window}
}

// Allow checks if request is within rate limit using sliding window
func (rl *RedisLimiter) Allow(ctx context.Context, identifier string) (Decision, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", rl.prefix, identifier)
	now := time.Now()
	windowStart := now.Add(-rl.window)

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, rl.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(countCmd.Val())
	return Decision{
		Allowed:   count < rl.maxRequests,
		Limit:     rl.maxRequests,
		Remaining: max(rl.maxRequests-count-1, 0),
		Reset:     now.Add(rl.window),
	}, nil
}

// MemoryLimiter is the single instance variant of RedisLimiter
type MemoryLimiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		hits:        make(map[string][]time.Time),
	}
}

func (ml *MemoryLimiter) Allow(_ context.Context, identifier string) (Decision, error) {
	now := ml.now()
	windowStart := now.Add(-ml.window)

	ml.mu.Lock()
	defer ml.mu.Unlock()

	kept := ml.hits[identifier][:0]
	for _, t := range ml.hits[identifier] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	count := len(kept)
	ml.hits[identifier] = append(kept, now)

	return Decision{
		Allowed:   count < ml.maxRequests,
		Limit:     ml.maxRequests,
		Remaining: max(ml.maxRequests-count-1, 0),
		Reset:     now.Add(ml.window),
	}, nil
}

// clientIP prefers the first X-Forwarded-For hop
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware rejects clients over the limit with 429. Limiter
// errors let the request through.
func RateLimitMiddleware(limiter Limiter, endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil {
			next(w, r)
			return
		}

		identifier := clientIP(r)
		decision, err := limiter.Allow(r.Context(), identifier)
		if err != nil {
			logger.Error(r.Context()).
				Err(err).
				Str("identifier", identifier).
				Msg("Rate limiter error")
			next(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			rateLimited.WithLabelValues(endpoint).Inc()
			logger.Warn(r.Context()).
				Str("identifier", identifier).
				Int("limit", decision.Limit).
				Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(decision.Reset).Round(time.Second).Seconds())))
			respondError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Try again in %v", time.Until(decision.Reset).Round(time.Second)))
			return
		}
		next(w, r)
	}
}

package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/tair/wishlist-service/pkg/auth"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/logger"
)

// localLimiterEntries bounds the number of callers tracked in memory
const localLimiterEntries = 10000

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter decides whether identifier may make another request
type RateLimiter interface {
	Allow(ctx context.Context, identifier string) (Decision, error)
}

// slidingWindowScript trims the window, counts it and records the request
// only when it is admitted, so rejected retries do not extend a lockout.
// Returns {allowed, count after the call}.
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '0', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {allowed, count}
`)

// RedisRateLimiter implements a sliding window shared by all replicas
type RedisRateLimiter struct {
	redis       redis.UniversalClient
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRedisRateLimiter creates a new Redis backed rate limiter
func NewRedisRateLimiter(client redis.UniversalClient, maxRequests int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:       client,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow checks if request is within rate limit using sliding window
func (rl *RedisRateLimiter) Allow(ctx context.Context, identifier string) (Decision, error) {
	key := fmt.Sprintf("ratelimit:%s", identifier)
	now := rl.now()
	windowStart := now.Add(-rl.window)

	res, err := slidingWindowScript.Run(ctx, rl.redis, []string{key},
		strconv.FormatInt(windowStart.UnixNano(), 10),
		strconv.FormatInt(now.UnixNano(), 10),
		rl.maxRequests,
		// members must be unique, concurrent requests can share a timestamp
		fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
		(rl.window + time.Minute).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("failed to check rate limit: unexpected reply %v", res)
	}

	count := int(res[1])
	return Decision{
		Allowed:   res[0] == 1,
		Limit:     rl.maxRequests,
		Remaining: max(rl.maxRequests-count, 0),
		ResetAt:   now.Add(rl.window),
	}, nil
}

// LocalRateLimiter is an in-process token bucket per identifier
type LocalRateLimiter struct {
	limiters  *lru.Cache[string, *rate.Limiter]
	perMinute int
	burst     int
	now       func() time.Time
}

// NewLocalRateLimiter allows perMinute requests per minute with bursts of up to burst
func NewLocalRateLimiter(perMinute, burst int) *LocalRateLimiter {
	limiters, _ := lru.New[string, *rate.Limiter](localLimiterEntries)
	return &LocalRateLimiter{
		limiters:  limiters,
		perMinute: perMinute,
		burst:     burst,
		now:       time.Now,
	}
}

// Allow takes one token from identifier's bucket
func (l *LocalRateLimiter) Allow(_ context.Context, identifier string) (Decision, error) {
	limiter, ok := l.limiters.Get(identifier)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(l.perMinute)/60), l.burst)
		if prev, loaded, _ := l.limiters.PeekOrAdd(identifier, limiter); loaded {
			limiter = prev
		}
	}

	now := l.now()
	allowed := limiter.AllowN(now, 1)
	tokens := limiter.TokensAt(now)

	// time until the bucket is full again
	refill := time.Duration((float64(l.burst) - tokens) / float64(limiter.Limit()) * float64(time.Second))
	return Decision{
		Allowed:   allowed,
		Limit:     l.burst,
		Remaining: max(int(tokens), 0),
		ResetAt:   now.Add(refill),
	}, nil
}

// FallbackRateLimiter consults secondary while primary is failing
type FallbackRateLimiter struct {
	primary   RateLimiter
	secondary RateLimiter
}

// NewFallbackRateLimiter creates a limiter that degrades from primary to secondary
func NewFallbackRateLimiter(primary, secondary RateLimiter) *FallbackRateLimiter {
	return &FallbackRateLimiter{primary: primary, secondary: secondary}
}

// Allow implements RateLimiter
func (f *FallbackRateLimiter) Allow(ctx context.Context, identifier string) (Decision, error) {
	decision, err := f.primary.Allow(ctx, identifier)
	if err == nil {
		return decision, nil
	}
	logger.Warn(ctx).
		Err(err).
		Str("identifier", identifier).
		Msg("Primary rate limiter failed, using local limiter")
	return f.secondary.Allow(ctx, identifier)
}

// RateLimitMiddleware limits requests per authenticated user, or per client
// IP for anonymous requests. Limiter failures let the request through.
func RateLimitMiddleware(limiter RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identifier := clientIP(r)
			if userID := auth.UserIDFromContext(ctx); userID != "" {
				identifier = fmt.Sprintf("user:%s", userID)
			}

			decision, err := limiter.Allow(ctx, identifier)
			if err != nil {
				logger.Error(ctx).
					Err(err).
					Str("identifier", identifier).
					Msg("Rate limiter error")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				logger.Warn(ctx).
					Str("identifier", identifier).
					Int("limit", decision.Limit).
					Msg("Rate limit exceeded")

				retryAfter := max(int(time.Until(decision.ResetAt).Round(time.Second).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respondError(w, r, apperrors.RateLimitExceeded())
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

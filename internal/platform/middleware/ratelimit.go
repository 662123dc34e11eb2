// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/constants"
	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-identity/internal/platform/metrics"
	"github.com/taibuivan/yomira-identity/internal/platform/respond"
)

// # Rate Limiting

// Limiter decides whether the client identified by key may proceed.
// When it may not, retryAfter says how long to wait.
type Limiter interface {
	Allow(context context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimit rejects clients that exceed the limiter's budget with 429.
//
// A limiter failure (e.g. Redis unreachable) is logged and the request is let
// through, so a cache outage degrades protection instead of availability.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Identify the client by their IP address
			clientIP := RealIP(request)

			allowed, retryAfter, err := limiter.Allow(request.Context(), clientIP)
			if err != nil {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "rate_limit_check_failed",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(writer, request)
				return
			}

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				metrics.RecordRateLimited()
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(seconds))
				respond.Error(writer, request, apperr.RateLimited(seconds))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # In-Memory Limiter

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket per key.
//
// The bucket holds `requests` tokens and refills at requests/window, which
// admits a burst of the full budget and then a steady trickle.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

/*
NewMemoryLimiter creates a [MemoryLimiter] and starts its cleanup goroutine.

The goroutine exits when ctx is cancelled.

Parameters:
  - context: Lifetime of the janitor goroutine
  - requests: Budget per window
  - window: Refill period for the full budget
*/
func NewMemoryLimiter(context context.Context, requests int, window time.Duration) *MemoryLimiter {
	limiter := &MemoryLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		idleTTL: window,
		now:     time.Now,
	}

	go limiter.janitor(context)

	return limiter
}

// Allow implements [Limiter].
func (limiter *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := limiter.now()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	// Initialize a new bucket if this is a fresh client
	clientInfo, found := limiter.clients[key]
	if !found {
		clientInfo = &rateLimitClient{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[key] = clientInfo
	}
	clientInfo.lastSeen = now

	reservation := clientInfo.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay, nil
	}

	return true, 0, nil
}

// Len returns the number of tracked clients.
func (limiter *MemoryLimiter) Len() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.clients)
}

func (limiter *MemoryLimiter) janitor(context context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.sweep()
		case <-context.Done():
			// Stop the goroutine when the application shuts down
			return
		}
	}
}

// sweep drops clients idle for longer than a full window; their bucket would be full again anyway.
func (limiter *MemoryLimiter) sweep() {
	cutoff := limiter.now().Add(-limiter.idleTTL)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for key, clientInfo := range limiter.clients {
		if clientInfo.lastSeen.Before(cutoff) {
			delete(limiter.clients, key)
		}
	}
}

// # Redis Limiter

// RedisLimiter is a fixed-window counter shared by every API replica.
type RedisLimiter struct {
	client   *redis.Client
	requests int64
	window   time.Duration
}

// NewRedisLimiter creates a [RedisLimiter] on an existing client.
func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, requests: int64(requests), window: window}
}

// Allow implements [Limiter] with INCR plus a first-hit EXPIRE in one round trip.
func (limiter *RedisLimiter) Allow(context context.Context, key string) (bool, time.Duration, error) {
	redisKey := constants.RedisPrefixRateLimit + key

	var count *redis.IntCmd
	var ttl *redis.DurationCmd

	_, err := limiter.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(context, redisKey)
		pipe.ExpireNX(context, redisKey, limiter.window)
		ttl = pipe.PTTL(context, redisKey)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis pipeline failed: %w", err)
	}

	if count.Val() > limiter.requests {
		retryAfter := ttl.Val()
		if retryAfter <= 0 {
			retryAfter = limiter.window
		}
		return false, retryAfter, nil
	}

	return true, 0, nil
}

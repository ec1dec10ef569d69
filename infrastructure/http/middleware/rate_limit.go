package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fixora/resourcesvc/infrastructure/http/response"
	"github.com/fixora/resourcesvc/infrastructure/service/logger"
	"github.com/fixora/resourcesvc/infrastructure/service/metrics"
	"github.com/fixora/resourcesvc/infrastructure/service/ratelimit"
)

type RateLimitConfig struct {
	Requests      int
	Window        time.Duration
	BlockDuration time.Duration
}

type RateLimitMiddleware struct {
	rateLimitService ratelimit.RateLimitService
	config           RateLimitConfig
	logger           logger.Logger
	metrics          *metrics.Metrics
}

func NewRateLimitMiddleware(rateLimitService ratelimit.RateLimitService, cfg RateLimitConfig, log logger.Logger, m *metrics.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		config:           cfg,
		logger:           log,
		metrics:          m,
	}
}

// RateLimit counts requests per actor (or per client IP before auth) in a
// fixed window. A client that exceeds the limit is blocked for BlockDuration.
// Store failures let the request through.
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitService == nil || m.config.Requests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := getClientIP(r)
		key := "api:ip:" + clientIP
		if actor := ActorID(ctx); actor != "" {
			key = "api:user:" + actor
		}

		isBlocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{"key": key})
		}
		if isBlocked {
			m.deny(w, r, key, "blocked", m.config.BlockDuration)
			return
		}

		count, err := m.rateLimitService.Increment(ctx, key, m.config.Window)
		if err != nil {
			m.logger.Error(ctx, "Failed to increment rate limit", err, map[string]interface{}{"key": key})
			next.ServeHTTP(w, r)
			return
		}

		if count > m.config.Requests {
			if err := m.rateLimitService.Block(ctx, key, m.config.BlockDuration, "Rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block client", err, map[string]interface{}{"key": key})
			}
			m.deny(w, r, key, "exceeded", m.config.BlockDuration)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.config.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(m.config.Requests-count))
		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) deny(w http.ResponseWriter, r *http.Request, key, reason string, retryAfter time.Duration) {
	if m.metrics != nil {
		m.metrics.RecordRateLimitHit(reason)
	}
	logger.LogSecurityEvent(r.Context(), m.logger, "rate_limit_"+reason, "MEDIUM", map[string]interface{}{
		"ip":        getClientIP(r),
		"path":      r.URL.Path,
		"key":       key,
		"userAgent": r.UserAgent(),
	})

	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	response.TooManyRequests(w, "Too many requests. Please try again later.")
}

// getClientIP extracts client IP from request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

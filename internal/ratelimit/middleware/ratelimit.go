package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"soulbound/internal/ratelimit/metrics"
	"soulbound/internal/ratelimit/models"
	"soulbound/pkg/platform/circuit"
	"soulbound/pkg/platform/httputil"
	metadata "soulbound/pkg/platform/middleware/metadata"
	request "soulbound/pkg/platform/middleware/request"
)

// Store is a sliding-window counter.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

var errNoFallback = errors.New("rate limit store unavailable and no fallback configured")

// HeaderStatus is set to "degraded" while the fallback store answers.
const HeaderStatus = "X-RateLimit-Status"

type Middleware struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	limits   map[models.Class]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns rate limiting off (tests, demos).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback answers checks from store while the primary is failing.
func WithFallback(store Store, breaker *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.fallback = store
		m.breaker = breaker
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(primary Store, limits map[models.Class]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		limits:  limits,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits each client IP per route class. Store failures without a
// fallback let the request through.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		class := models.ClassOf(r.Method)
		limit, ok := m.limits[class]
		if !ok || limit.RequestsPerWindow <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ip := metadata.GetClientIP(ctx)

		result, degraded, err := m.check(ctx, models.NewKey(ip, class), limit)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"class", class,
				"request_id", request.GetRequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if degraded {
			w.Header().Set(HeaderStatus, "degraded")
		}
		if !result.Allowed {
			m.metrics.IncRejected(string(class))
			writeRateLimitExceeded(w, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) check(ctx context.Context, key string, limit models.Limit) (*models.RateLimitResult, bool, error) {
	if m.breaker == nil || m.breaker.Allow() {
		result, err := m.primary.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
		if err == nil {
			if m.breaker != nil {
				if _, change := m.breaker.RecordSuccess(); change.Closed {
					m.logger.InfoContext(ctx, "rate limit store recovered")
				}
			}
			return result, false, nil
		}
		m.metrics.IncStoreErrors()
		if m.breaker == nil {
			return nil, false, err
		}
		if _, change := m.breaker.RecordFailure(); change.Opened {
			m.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback", "error", err)
		}
	}
	if m.fallback == nil {
		return nil, false, errNoFallback
	}
	m.metrics.IncDegraded()
	result, err := m.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
	return result, true, err
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}

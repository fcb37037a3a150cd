// Package httpapi assembles the public router: the middleware chain, the
// registry endpoints, operator routes and /metrics.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	achievementhandler "soulbound/internal/achievement/handler"
	"soulbound/internal/admin"
	identityhandler "soulbound/internal/identity/handler"
	"soulbound/internal/platform/metrics"
	ratelimit "soulbound/internal/ratelimit/middleware"
	authmw "soulbound/pkg/platform/middleware/auth"
	"soulbound/pkg/platform/middleware/metadata"
	request "soulbound/pkg/platform/middleware/request"
)

const defaultRequestTimeout = 30 * time.Second

// Config carries everything the router mounts. RateLimiter may be nil.
type Config struct {
	Logger       *slog.Logger
	Registry     *prometheus.Registry
	Validator    authmw.JWTValidator
	Identity     identityhandler.Service
	Achievements achievementhandler.Service

	AuditTrail   admin.AuditLister
	HealthChecks map[string]admin.HealthCheck
	AdminToken   string

	RateLimiter    *ratelimit.Middleware
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints. Registry routes are rate limited;
// operator routes and /metrics are not.
func NewRouter(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log, metrics.New(cfg.Registry)))
	r.Use(request.Timeout(timeout))
	r.Use(metadata.ClientMetadata)

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry}))
	}
	if cfg.AuditTrail != nil {
		admin.New(cfg.AuditTrail, cfg.HealthChecks, cfg.AdminToken, log).Register(r)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.RateLimit)
		}
		identityhandler.New(cfg.Identity, cfg.Validator, log).Register(r)
		achievementhandler.New(cfg.Achievements, cfg.Validator, log).Register(r)
	})
	return r
}

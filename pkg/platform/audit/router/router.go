// Package router fans audit events out by category. Compliance events go to a
// synchronous sink so the caller learns about persistence failures; routine
// operations events may be sampled and are shed while their sink is failing.
package router

import (
	"context"
	"errors"
	"log/slog"

	audit "soulbound/pkg/platform/audit"
	"soulbound/pkg/platform/circuit"
)

// ErrShed is returned when an operations event is dropped because its sink
// circuit is open.
var ErrShed = errors.New("audit sink unavailable, event shed")

// Router implements audit.Emitter.
type Router struct {
	routes   map[audit.EventCategory]audit.Emitter
	fallback audit.Emitter
	sampler  *Sampler
	breaker  *circuit.Breaker
	metrics  *Metrics
	logger   *slog.Logger
}

type Option func(*Router)

// WithRoute sends events of category c to emitter.
func WithRoute(c audit.EventCategory, emitter audit.Emitter) Option {
	return func(r *Router) {
		r.routes[c] = emitter
	}
}

// WithSampler thins operations events. Other categories are never sampled.
func WithSampler(s *Sampler) Option {
	return func(r *Router) {
		r.sampler = s
	}
}

// WithBreaker guards the operations sink.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Router) {
		r.breaker = b
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a router. Categories without a route go to fallback.
func New(fallback audit.Emitter, opts ...Option) *Router {
	r := &Router{
		routes:   make(map[audit.EventCategory]audit.Emitter),
		fallback: fallback,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	emitter, ok := r.routes[event.Category]
	if !ok {
		emitter = r.fallback
	}
	if emitter == nil {
		r.logger.WarnContext(ctx, "no audit route for category, dropping event",
			"category", event.Category,
			"action", event.Action,
		)
		return nil
	}

	if event.Category != audit.CategoryOperations {
		err := emitter.Emit(ctx, event)
		if err != nil {
			r.metrics.IncFailed(event.Category)
			return err
		}
		r.metrics.IncRouted(event.Category)
		return nil
	}
	return r.emitOps(ctx, emitter, event)
}

func (r *Router) emitOps(ctx context.Context, emitter audit.Emitter, event audit.Event) error {
	if r.sampler != nil && !r.sampler.ShouldSample(event.Action) {
		r.metrics.IncSampledOut()
		return nil
	}
	if r.breaker != nil && !r.breaker.Allow() {
		r.metrics.IncShed()
		return ErrShed
	}

	if err := emitter.Emit(ctx, event); err != nil {
		r.metrics.IncFailed(event.Category)
		if r.breaker != nil {
			if _, change := r.breaker.RecordFailure(); change.Opened {
				r.logger.WarnContext(ctx, "operations audit sink failing, shedding events", "error", err)
			}
		}
		return err
	}
	if r.breaker != nil {
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "operations audit sink recovered")
		}
	}
	r.metrics.IncRouted(event.Category)
	return nil
}

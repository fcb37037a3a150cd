package resolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"soulbound/internal/resolution/metrics"
	"soulbound/pkg/platform/sentinel"
)

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = fmt.Errorf("resolution queue full: %w", sentinel.ErrUnavailable)

// Dispatcher is the in-process transport: a bounded queue drained by a pool
// of workers that call a Resolver and deliver each result to a Handler.
type Dispatcher struct {
	resolver Resolver
	queue    chan Request
	workers  int
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.RWMutex
	closed bool
}

type DispatcherOption func(*Dispatcher)

func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Request, n)
		}
	}
}

// WithTimeout bounds each lookup.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(resolver Resolver, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		queue:    make(chan Request, 256),
		workers:  4,
		timeout:  5 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue accepts req without waiting for a worker.
func (d *Dispatcher) Enqueue(_ context.Context, req Request) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return sentinel.ErrClosed
	}
	select {
	case d.queue <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes requests until Close is called and the queue is drained.
// Results are delivered with a context detached from ctx so a shutdown does
// not strand accepted requests.
func (d *Dispatcher) Run(ctx context.Context, handler Handler) error {
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for range d.workers {
		g.Go(func() error {
			for req := range d.queue {
				d.process(gctx, handler, req)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close stops accepting requests. Queued requests are still processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

func (d *Dispatcher) process(ctx context.Context, handler Handler, req Request) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "resolution.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("resolution.token", req.Token.String()),
		attribute.String("resolution.kind", string(req.Kind)),
	)

	d.metrics.IncInFlight()
	start := time.Now()

	lookupCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	res := Resolve(lookupCtx, d.resolver, req)

	d.metrics.DecInFlight()
	d.metrics.ObserveResult(string(req.Kind), res.Failed(), time.Since(start).Seconds())
	if res.Failed() {
		span.SetStatus(codes.Error, res.Fault)
	}

	if err := handler.HandleResolution(ctx, res); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.ErrorContext(ctx, "resolution handler failed",
			"token", req.Token,
			"kind", req.Kind,
			"error", err,
		)
	}
}

package resolution

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"soulbound/internal/resolution/metrics"
)

const tracerName = "soulbound/resolution"

// Client submits requests on behalf of a Handler. When the transport refuses
// a request, Client delivers the fault itself so the handler still sees one
// terminal result for the token.
type Client struct {
	transport Transport
	handler   Handler
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type ClientOption func(*Client)

func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithClientMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(transport Transport, handler Handler, opts ...ClientOption) *Client {
	c := &Client{transport: transport, handler: handler}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit hands req to the transport. It never returns the transport error;
// a refusal becomes a fault result delivered to the handler.
func (c *Client) Submit(ctx context.Context, req Request) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "resolution.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("resolution.token", req.Token.String()),
		attribute.String("resolution.kind", string(req.Kind)),
	)

	err := c.transport.Enqueue(ctx, req)
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "transport refused request")
	c.metrics.IncRefused()
	if c.logger != nil {
		c.logger.WarnContext(ctx, "resolution request refused",
			"token", req.Token,
			"kind", req.Kind,
			"error", err,
		)
	}

	if herr := c.handler.HandleResolution(ctx, FaultResult(req, "transport refused request: "+err.Error())); herr != nil && c.logger != nil {
		c.logger.ErrorContext(ctx, "failed to deliver refusal fault",
			"token", req.Token,
			"error", herr,
		)
	}
}

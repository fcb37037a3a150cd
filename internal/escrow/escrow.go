// Package escrow moves released and refunded value to accounts.
//
// Transfers are fire-and-forget: callers issue them after their own state is
// persisted and never roll back on a transfer error.
package escrow

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"soulbound/pkg/domain"
)

// Transferrer sends amount to an account.
type Transferrer interface {
	Transfer(ctx context.Context, to domain.AccountID, amount domain.Amount) error
}

// Metrics counts transfers by outcome.
type Metrics struct {
	Transfers *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		Transfers: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_escrow_transfers_total",
			Help: "Escrow transfers by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) inc(outcome string) {
	if m != nil {
		m.Transfers.WithLabelValues(outcome).Inc()
	}
}

// Observed wraps a Transferrer with logging and metrics. Zero amounts are
// skipped before reaching the inner transferrer.
type Observed struct {
	inner   Transferrer
	logger  *slog.Logger
	metrics *Metrics
}

func NewObserved(inner Transferrer, logger *slog.Logger, metrics *Metrics) *Observed {
	return &Observed{inner: inner, logger: logger, metrics: metrics}
}

func (o *Observed) Transfer(ctx context.Context, to domain.AccountID, amount domain.Amount) error {
	if amount.IsZero() {
		o.metrics.inc("skipped")
		return nil
	}
	if err := o.inner.Transfer(ctx, to, amount); err != nil {
		o.metrics.inc("failed")
		o.logger.ErrorContext(ctx, "escrow transfer failed",
			"to", to,
			"amount", amount.String(),
			"error", err,
		)
		return err
	}
	o.metrics.inc("sent")
	o.logger.InfoContext(ctx, "escrow transfer sent",
		"to", to,
		"amount", amount.String(),
	)
	return nil
}

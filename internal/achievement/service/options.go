package service

import (
	"log/slog"
	"time"

	achievementmetrics "soulbound/internal/achievement/metrics"
	"soulbound/internal/achievement/outcome"
	resolutionmetrics "soulbound/internal/resolution/metrics"
	"soulbound/pkg/platform/audit"
)

type serviceConfig struct {
	logger            *slog.Logger
	auditor           audit.Emitter
	metrics           *achievementmetrics.Metrics
	resolutionMetrics *resolutionmetrics.Metrics
	outcomes          OutcomeStore
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditor(auditor audit.Emitter) Option {
	return func(c *serviceConfig) {
		c.auditor = auditor
	}
}

func WithMetrics(m *achievementmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithResolutionMetrics counts requests the transport refused.
func WithResolutionMetrics(m *resolutionmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.resolutionMetrics = m
	}
}

// WithOutcomeStore replaces the default in-memory outcome store.
func WithOutcomeStore(store OutcomeStore) Option {
	return func(c *serviceConfig) {
		c.outcomes = store
	}
}

func defaultConfig() *serviceConfig {
	return &serviceConfig{
		logger:   slog.Default(),
		outcomes: outcome.NewInMemoryStore(24 * time.Hour),
	}
}

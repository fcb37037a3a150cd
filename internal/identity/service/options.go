package service

import (
	"log/slog"

	identitymetrics "soulbound/internal/identity/metrics"
	"soulbound/pkg/platform/audit"
)

type serviceConfig struct {
	logger  *slog.Logger
	auditor audit.Emitter
	metrics *identitymetrics.Metrics
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

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// Package admin serves operator routes: the audit trail of an account and a
// dependency health report. Every route requires the admin token.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/audit"
	"soulbound/pkg/platform/httputil"
	adminmw "soulbound/pkg/platform/middleware/admin"
	"soulbound/pkg/platform/middleware/metadata"
	request "soulbound/pkg/platform/middleware/request"
)

// AuditLister reads events recorded for a subject.
type AuditLister interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	audit  AuditLister
	checks map[string]HealthCheck
	token  string
	logger *slog.Logger
}

func New(lister AuditLister, checks map[string]HealthCheck, token string, logger *slog.Logger) *Handler {
	return &Handler{
		audit:  lister,
		checks: checks,
		token:  token,
		logger: logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(h.token, h.logger))
		r.Get("/audit/{account}", h.handleAuditTrail)
		r.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := domain.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.audit.List(ctx, string(account))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}

	resp := &AuditTrailResponse{Subject: string(account), Events: make([]*AuditEventResponse, 0, len(events)), Total: len(events)}
	for _, e := range events {
		var device string
		if e.UserAgent != "" {
			device = metadata.DescribeUserAgent(e.UserAgent)
		}
		resp.Events = append(resp.Events, &AuditEventResponse{
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			Subject:   e.Subject,
			Action:    e.Action,
			Resource:  e.Resource,
			Token:     e.Token,
			Amount:    e.Amount,
			Reason:    e.Reason,
			RequestID: e.RequestID,
			ClientIP:  e.ClientIP,
			UserAgent: e.UserAgent,
			Device:    device,
		})
	}
	sort.SliceStable(resp.Events, func(i, j int) bool {
		return resp.Events[i].Timestamp.Before(resp.Events[j].Timestamp)
	})
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := &HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

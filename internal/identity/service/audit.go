package service

import (
	"context"
	"log/slog"

	"soulbound/pkg/domain"
	"soulbound/pkg/platform/audit"
	"soulbound/pkg/platform/middleware/metadata"
	"soulbound/pkg/requestcontext"
)

// auditEmitter records identity lifecycle events after they are persisted.
// Emission failures are logged; the state change has already happened.
type auditEmitter struct {
	logger  *slog.Logger
	auditor audit.Emitter
}

func newAuditEmitter(logger *slog.Logger, auditor audit.Emitter) *auditEmitter {
	return &auditEmitter{logger: logger, auditor: auditor}
}

func (e *auditEmitter) emitSoulMinted(ctx context.Context, operator, account domain.AccountID, id domain.SoulID) {
	e.emit(ctx, audit.Event{
		Subject:  string(account),
		Action:   string(audit.EventSoulMinted),
		Resource: id.String(),
		Reason:   "minted by " + string(operator),
	})
}

func (e *auditEmitter) emitSoulClaimed(ctx context.Context, account domain.AccountID, id domain.SoulID) {
	e.emit(ctx, audit.Event{
		Subject:  string(account),
		Action:   string(audit.EventSoulClaimed),
		Resource: id.String(),
	})
}

func (e *auditEmitter) emitSoulBurned(ctx context.Context, account domain.AccountID, id domain.SoulID) {
	e.emit(ctx, audit.Event{
		Subject:  string(account),
		Action:   string(audit.EventSoulBurned),
		Resource: id.String(),
	})
}

func (e *auditEmitter) emit(ctx context.Context, event audit.Event) {
	if e.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = metadata.GetClientIP(ctx)
	event.UserAgent = metadata.GetUserAgent(ctx)
	if err := e.auditor.Emit(ctx, event); err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

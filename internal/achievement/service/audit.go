package service

import (
	"context"
	"log/slog"

	"soulbound/internal/achievement/models"
	"soulbound/pkg/platform/audit"
	"soulbound/pkg/platform/middleware/metadata"
	"soulbound/pkg/requestcontext"
)

var committedEvents = map[models.Op]audit.AuditEvent{
	models.OpMint:        audit.EventAchievementMinted,
	models.OpBurn:        audit.EventAchievementBurned,
	models.OpUpdateOwner: audit.EventAchievementOwnerUpdated,
	models.OpAccept:      audit.EventAchievementAccepted,
	models.OpVerify:      audit.EventAchievementVerified,
}

// auditEmitter records achievement events after state is persisted.
type auditEmitter struct {
	logger  *slog.Logger
	auditor audit.Emitter
}

func newAuditEmitter(logger *slog.Logger, auditor audit.Emitter) *auditEmitter {
	return &auditEmitter{logger: logger, auditor: auditor}
}

func (e *auditEmitter) emitCommitted(ctx context.Context, p models.PendingRequest, amount string) {
	e.emit(ctx, audit.Event{
		Subject:  string(p.Signer),
		Action:   string(committedEvents[p.Op]),
		Resource: p.AchievementID.String(),
		Token:    string(p.Origin),
		Amount:   amount,
	})
}

func (e *auditEmitter) emitAborted(ctx context.Context, p models.PendingRequest, code string) {
	e.emit(ctx, audit.Event{
		Subject:  string(p.Signer),
		Action:   string(audit.EventRequestAborted),
		Resource: p.AchievementID.String(),
		Token:    string(p.Origin),
		Reason:   string(p.Op) + ": " + code,
	})
}

func (e *auditEmitter) emitReplenished(ctx context.Context, signer, id, amount string) {
	e.emit(ctx, audit.Event{
		Subject:  signer,
		Action:   string(audit.EventAchievementReplenished),
		Resource: id,
		Amount:   amount,
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
	if err := e.auditor.Emit(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

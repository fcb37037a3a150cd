package service

import (
	"context"
	"time"

	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/requestcontext"
)

type payment struct {
	to     domain.AccountID
	amount domain.Amount
}

// effects is what a resumed request does once state is persisted. The
// transaction body only computes it, since it may run more than once.
type effects struct {
	status   models.Status
	err      error
	amount   domain.Amount
	payments []payment
	next     *resolution.Request
	pending  int
}

// HandleResolution resumes the request waiting on result.Token. Unknown tokens
// are ignored, so a replayed or late result has no effect. Faults and identity
// mismatches abort the request and refund any held deposit. The returned error
// reports infrastructure failures only.
func (s *Service) HandleResolution(ctx context.Context, result resolution.Result) error {
	var (
		p     models.PendingRequest
		found bool
		eff   effects
	)
	now := requestcontext.Now(ctx).UTC()
	err := s.tx.RunInTx(ctx, func(_ context.Context, st *models.State) error {
		eff = effects{}
		p, found = st.TakePending(result.Token)
		if !found {
			return nil
		}
		eff = resume(st, p, result, now)
		eff.pending = len(st.Pending)
		return nil
	})
	if err != nil {
		s.cfg.logger.ErrorContext(ctx, "failed to resume request",
			"token", result.Token,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resume request")
	}
	if !found {
		s.cfg.metrics.IncIgnored()
		s.cfg.logger.DebugContext(ctx, "ignoring result for unknown token", "token", result.Token)
		return nil
	}
	s.finish(ctx, p, eff)
	return nil
}

func (s *Service) finish(ctx context.Context, p models.PendingRequest, eff effects) {
	s.cfg.metrics.SetPending(eff.pending)
	if eff.next != nil {
		s.client.Submit(ctx, *eff.next)
		return
	}

	for _, pay := range eff.payments {
		s.transfer(ctx, pay.to, pay.amount)
	}
	s.putOutcome(ctx, p, eff.status, eff.err)

	if eff.status == models.StatusAborted {
		code := dErrors.CodeOf(eff.err)
		s.cfg.metrics.IncOutcome(string(p.Op), string(code))
		s.audit.emitAborted(ctx, p, string(code))
		s.cfg.logger.InfoContext(ctx, "request aborted",
			"op", p.Op,
			"token", p.Origin,
			"achievement_id", p.AchievementID.String(),
			"code", code,
		)
		return
	}
	s.cfg.metrics.IncOutcome(string(p.Op), string(models.StatusCommitted))
	s.audit.emitCommitted(ctx, p, eff.amount.String())
	s.cfg.logger.InfoContext(ctx, "request committed",
		"op", p.Op,
		"token", p.Origin,
		"achievement_id", p.AchievementID.String(),
	)
}

func resume(st *models.State, p models.PendingRequest, result resolution.Result, now time.Time) effects {
	if result.Failed() {
		return abort(p, dErrors.New(dErrors.CodeRemoteResolutionFault, result.Fault))
	}
	if result.Kind != p.ExpectedKind() {
		return abort(p, dErrors.New(dErrors.CodeRemoteResolutionFault, "unexpected resolution kind "+string(result.Kind)))
	}
	if p.Stage == models.StageTarget {
		return resumeTarget(st, p, result)
	}
	if result.SoulID != p.Expected {
		return abort(p, errMismatch)
	}

	id := p.AchievementID
	switch p.Op {
	case models.OpMint:
		if err := st.CanMint(p.Payload); err != nil {
			return abort(p, err)
		}
		st.ApplyMint(p.Payload)
		return commit(p.Payload.Balance)

	case models.OpBurn:
		a, err := st.Get(id)
		if err != nil {
			return abort(p, err)
		}
		if a.Issuer != p.Expected {
			return abort(p, errMismatch)
		}
		if err := st.ApplyBurn(id); err != nil {
			return abort(p, err)
		}
		return commit(domain.Amount{})

	case models.OpUpdateOwner:
		a, err := st.CanUpdateOwner(id)
		if err != nil {
			return abort(p, err)
		}
		if a.Issuer != p.Expected {
			return abort(p, errMismatch)
		}
		next := chain(st, p, now)
		req := resolution.IdentifierRequest(next.Token, p.NewAccount, now)
		return effects{status: models.StatusPending, next: &req}

	case models.OpAccept:
		a, err := st.Get(id)
		if err != nil {
			return abort(p, err)
		}
		if a.Owner != p.Expected {
			return abort(p, errMismatch)
		}
		if err := st.ApplyAccept(id); err != nil {
			return abort(p, err)
		}
		return commit(domain.Amount{})

	case models.OpVerify:
		a, err := st.CanVerify(id)
		if err != nil {
			return abort(p, err)
		}
		if a.Verifier != p.Expected {
			return abort(p, errMismatch)
		}
		next := chain(st, p, now)
		req := resolution.AccountRequest(next.Token, a.Verifier, now)
		return effects{status: models.StatusPending, next: &req}
	}
	return abort(p, dErrors.New(dErrors.CodeInvariantViolation, "unknown operation "+string(p.Op)))
}

// resumeTarget completes the second lookup of a two-step operation.
func resumeTarget(st *models.State, p models.PendingRequest, result resolution.Result) effects {
	id := p.AchievementID
	switch p.Op {
	case models.OpUpdateOwner:
		if result.SoulID.IsZero() {
			return abort(p, dErrors.New(dErrors.CodeIdentityMismatch, "new owner has no identity"))
		}
		if err := st.ApplySetOwner(id, result.SoulID); err != nil {
			return abort(p, err)
		}
		return commit(domain.Amount{})

	case models.OpVerify:
		a, err := st.CanVerify(id)
		if err != nil {
			return abort(p, err)
		}
		if result.Account == "" || result.SoulID != a.Verifier {
			return abort(p, dErrors.New(dErrors.CodeIdentityMismatch, "verifier account did not resolve"))
		}
		payout, err := st.ApplyVerify(id)
		if err != nil {
			return abort(p, err)
		}
		eff := commit(payout)
		eff.payments = []payment{{to: result.Account, amount: payout}}
		return eff
	}
	return abort(p, dErrors.New(dErrors.CodeInvariantViolation, "operation has no second step: "+string(p.Op)))
}

var errMismatch = dErrors.New(dErrors.CodeIdentityMismatch, "signer does not hold the required identity")

// chain stores the follow-up request of a two-step operation under a fresh
// token. The caller keeps following Origin.
func chain(st *models.State, p models.PendingRequest, now time.Time) models.PendingRequest {
	next := p
	next.Token = resolution.NewToken()
	next.Stage = models.StageTarget
	next.IssuedAt = now
	st.AddPending(next)
	return next
}

func commit(amount domain.Amount) effects {
	return effects{status: models.StatusCommitted, amount: amount}
}

func abort(p models.PendingRequest, err error) effects {
	eff := effects{status: models.StatusAborted, err: err}
	if !p.Held.IsZero() {
		eff.payments = []payment{{to: p.Signer, amount: p.Held}}
	}
	return eff
}

func (s *Service) putOutcome(ctx context.Context, p models.PendingRequest, status models.Status, cause error) {
	o := models.Outcome{
		Token:         p.Origin,
		Op:            p.Op,
		AchievementID: p.AchievementID,
		Status:        status,
		UpdatedAt:     requestcontext.Now(ctx).UTC(),
	}
	if cause != nil {
		o.Code = string(dErrors.CodeOf(cause))
		o.Message = cause.Error()
	}
	if err := s.outcomes.Put(ctx, o); err != nil {
		s.cfg.logger.WarnContext(ctx, "failed to record request outcome",
			"token", p.Origin,
			"error", err,
		)
	}
}

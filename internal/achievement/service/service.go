package service

import (
	"context"
	"errors"

	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/sentinel"
	"soulbound/pkg/requestcontext"
)

// StateTx loads and persists the achievement aggregate once per call.
type StateTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, state *models.State) error) error
	View(ctx context.Context, fn func(ctx context.Context, state *models.State) error) error
}

// Transferrer pays out escrow and refunds deposits.
type Transferrer interface {
	Transfer(ctx context.Context, to domain.AccountID, amount domain.Amount) error
}

// OutcomeStore keeps what happened to each submitted request.
type OutcomeStore interface {
	Put(ctx context.Context, o models.Outcome) error
	Get(ctx context.Context, token resolution.Token) (models.Outcome, error)
}

// Service is the achievement registry. Every mutation that needs the caller's
// identity is split in two: the entry point validates, records a pending
// request and returns its token; HandleResolution commits or aborts it.
type Service struct {
	tx        StateTx
	client    *resolution.Client
	transfers Transferrer
	outcomes  OutcomeStore
	audit     *auditEmitter
	cfg       *serviceConfig
}

// New wires the service as the handler of its own resolution client, so
// results and transport refusals both arrive at HandleResolution.
func New(tx StateTx, transport resolution.Transport, transfers Transferrer, opts ...Option) *Service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Service{
		tx:        tx,
		transfers: transfers,
		outcomes:  cfg.outcomes,
		audit:     newAuditEmitter(cfg.logger, cfg.auditor),
		cfg:       cfg,
	}
	s.client = resolution.NewClient(transport, s,
		resolution.WithClientLogger(cfg.logger),
		resolution.WithClientMetrics(cfg.resolutionMetrics),
	)
	return s
}

// Mint escrows the achievement's balance from the attached deposit and asks
// for the signer's soul id. Excess deposit is refunded right away; the held
// balance is refunded if the request aborts.
func (s *Service) Mint(ctx context.Context, a models.Achievement) (resolution.Token, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return "", err
	}
	deposit := requestcontext.Deposit(ctx)
	a.IsAccepted = false
	a.IsVerified = false

	excess, err := deposit.Sub(a.Balance)
	if err != nil {
		s.transfer(ctx, signer, deposit)
		return "", dErrors.New(dErrors.CodeInsufficientDeposit, "attached deposit is below the achievement balance")
	}

	p := s.newPending(ctx, models.OpMint, signer, a.ID)
	p.Expected = a.Issuer
	p.Payload = a
	p.Held = a.Balance
	err = s.suspend(ctx, &p, func(st *models.State) error {
		return st.CanMint(a)
	})
	if err != nil {
		s.transfer(ctx, signer, deposit)
		return "", err
	}
	s.transfer(ctx, signer, excess)
	return p.Origin, nil
}

// Burn deletes an achievement once the signer proves to be its issuer. An
// achievement that still holds escrow cannot be burned.
func (s *Service) Burn(ctx context.Context, id domain.AchievementID) (resolution.Token, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return "", err
	}
	p := s.newPending(ctx, models.OpBurn, signer, id)
	err = s.suspend(ctx, &p, func(st *models.State) error {
		a, err := st.CanBurn(id)
		if err != nil {
			return err
		}
		p.Expected = a.Issuer
		return nil
	})
	if err != nil {
		return "", err
	}
	return p.Origin, nil
}

// UpdateOwner sets the owner of an unowned achievement. The signer must be
// the issuer; newAccount is then resolved to its soul id.
func (s *Service) UpdateOwner(ctx context.Context, id domain.AchievementID, newAccount domain.AccountID) (resolution.Token, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return "", err
	}
	if _, err := domain.ParseAccountID(string(newAccount)); err != nil {
		return "", err
	}
	p := s.newPending(ctx, models.OpUpdateOwner, signer, id)
	p.NewAccount = newAccount
	err = s.suspend(ctx, &p, func(st *models.State) error {
		a, err := st.CanUpdateOwner(id)
		if err != nil {
			return err
		}
		p.Expected = a.Issuer
		return nil
	})
	if err != nil {
		return "", err
	}
	return p.Origin, nil
}

// AcceptAchievement lets the owner acknowledge the achievement.
func (s *Service) AcceptAchievement(ctx context.Context, id domain.AchievementID) (resolution.Token, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return "", err
	}
	p := s.newPending(ctx, models.OpAccept, signer, id)
	err = s.suspend(ctx, &p, func(st *models.State) error {
		a, err := st.Get(id)
		if err != nil {
			return err
		}
		if a.Owner.IsZero() {
			return dErrors.New(dErrors.CodeIdentityMismatch, "achievement has no owner yet")
		}
		p.Expected = a.Owner
		return nil
	})
	if err != nil {
		return "", err
	}
	return p.Origin, nil
}

// VerifyAchievement lets the verifier confirm the achievement. On commit the
// escrowed balance is paid to the verifier's account.
func (s *Service) VerifyAchievement(ctx context.Context, id domain.AchievementID) (resolution.Token, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return "", err
	}
	p := s.newPending(ctx, models.OpVerify, signer, id)
	err = s.suspend(ctx, &p, func(st *models.State) error {
		a, err := st.CanVerify(id)
		if err != nil {
			return err
		}
		if a.Verifier.IsZero() {
			return dErrors.New(dErrors.CodeIdentityMismatch, "achievement has no verifier")
		}
		p.Expected = a.Verifier
		return nil
	})
	if err != nil {
		return "", err
	}
	return p.Origin, nil
}

// ReplenishBalance adds the attached deposit to the escrow. Anyone may top up.
func (s *Service) ReplenishBalance(ctx context.Context, id domain.AchievementID) (domain.Amount, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return domain.Amount{}, err
	}
	deposit := requestcontext.Deposit(ctx)
	if deposit.IsZero() {
		return domain.Amount{}, dErrors.New(dErrors.CodeInvalidInput, "an attached deposit is required")
	}

	var balance domain.Amount
	err = s.tx.RunInTx(ctx, func(_ context.Context, st *models.State) error {
		var err error
		balance, err = st.ApplyReplenish(id, deposit)
		return err
	})
	if err != nil {
		s.transfer(ctx, signer, deposit)
		s.cfg.metrics.IncOutcome("replenish", string(dErrors.CodeOf(err)))
		return domain.Amount{}, s.wrap(err, "failed to replenish balance")
	}
	s.cfg.metrics.IncOutcome("replenish", "committed")
	s.audit.emitReplenished(ctx, string(signer), id.String(), deposit.String())
	return balance, nil
}

// GetAchievement returns the achievement with id.
func (s *Service) GetAchievement(ctx context.Context, id domain.AchievementID) (models.Achievement, error) {
	var a models.Achievement
	err := s.tx.View(ctx, func(_ context.Context, st *models.State) error {
		var err error
		a, err = st.Get(id)
		return err
	})
	if err != nil {
		return models.Achievement{}, s.wrap(err, "failed to load achievement")
	}
	return a, nil
}

// ListByIssuer returns the live achievements issued by a soul, in mint order.
// An unknown issuer yields an empty list.
func (s *Service) ListByIssuer(ctx context.Context, issuer domain.SoulID) ([]models.Achievement, error) {
	var out []models.Achievement
	err := s.tx.View(ctx, func(_ context.Context, st *models.State) error {
		out = st.ListByIssuer(issuer)
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "failed to list achievements")
	}
	return out, nil
}

// ListByOwner returns the live achievements owned by a soul. The zero id lists
// achievements whose owner is not set yet.
func (s *Service) ListByOwner(ctx context.Context, owner domain.SoulID) ([]models.Achievement, error) {
	var out []models.Achievement
	err := s.tx.View(ctx, func(_ context.Context, st *models.State) error {
		out = st.ListByOwner(owner)
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "failed to list achievements")
	}
	return out, nil
}

// RequestOutcome reports what happened to the request behind token.
func (s *Service) RequestOutcome(ctx context.Context, token resolution.Token) (models.Outcome, error) {
	o, err := s.outcomes.Get(ctx, token)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Outcome{}, dErrors.New(dErrors.CodeNotFound, "unknown request token")
	}
	if err != nil {
		return models.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request outcome")
	}
	return o, nil
}

func (s *Service) newPending(ctx context.Context, op models.Op, signer domain.AccountID, id domain.AchievementID) models.PendingRequest {
	token := resolution.NewToken()
	return models.PendingRequest{
		Token:         token,
		Origin:        token,
		Op:            op,
		Stage:         models.StageSigner,
		Signer:        signer,
		AchievementID: id,
		IssuedAt:      requestcontext.Now(ctx).UTC(),
	}
}

// suspend validates with check, stores p and submits the signer lookup. check
// may fill in p.Expected from current state.
func (s *Service) suspend(ctx context.Context, p *models.PendingRequest, check func(st *models.State) error) error {
	var pending int
	err := s.tx.RunInTx(ctx, func(_ context.Context, st *models.State) error {
		if err := check(st); err != nil {
			return err
		}
		st.AddPending(*p)
		pending = len(st.Pending)
		return nil
	})
	if err != nil {
		s.cfg.metrics.IncOutcome(string(p.Op), string(dErrors.CodeOf(err)))
		return s.wrap(err, "failed to submit "+string(p.Op))
	}

	s.cfg.metrics.IncSubmitted(string(p.Op))
	s.cfg.metrics.SetPending(pending)
	s.putOutcome(ctx, *p, models.StatusPending, nil)
	s.client.Submit(ctx, resolution.IdentifierRequest(p.Token, p.Signer, p.IssuedAt))
	return nil
}

func (s *Service) transfer(ctx context.Context, to domain.AccountID, amount domain.Amount) {
	if amount.IsZero() || to == "" {
		return
	}
	if err := s.transfers.Transfer(ctx, to, amount); err != nil {
		s.cfg.logger.ErrorContext(ctx, "escrow transfer failed",
			"to", to,
			"amount", amount.String(),
			"error", err,
		)
	}
}

func requireSigner(ctx context.Context) (domain.AccountID, error) {
	signer := requestcontext.Signer(ctx)
	if signer == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "signer required")
	}
	return signer, nil
}

// wrap keeps coded errors and marks everything else internal.
func (s *Service) wrap(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

package service

import (
	"context"

	"golang.org/x/crypto/sha3"

	"soulbound/internal/identity/models"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/requestcontext"
)

// StateTx loads and persists the identity aggregate once per call.
type StateTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, state *models.State) error) error
	View(ctx context.Context, fn func(ctx context.Context, state *models.State) error) error
}

// Service is the identity registry: it owns souls and the account/soul id
// bijection.
type Service struct {
	tx       StateTx
	operator domain.AccountID
	audit    *auditEmitter
	cfg      *serviceConfig
}

func New(tx StateTx, operator domain.AccountID, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		tx:       tx,
		operator: operator,
		audit:    newAuditEmitter(cfg.logger, cfg.auditor),
		cfg:      cfg,
	}
}

// Mint reserves id for account. Only the operator may mint.
func (s *Service) Mint(ctx context.Context, id domain.SoulID, account domain.AccountID) error {
	signer := requestcontext.Signer(ctx)
	if signer == "" || signer != s.operator {
		err := dErrors.New(dErrors.CodeUnauthorized, "only the registry operator may mint")
		s.observe("mint", err)
		return err
	}
	if _, err := domain.ParseAccountID(string(account)); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(_ context.Context, st *models.State) error {
		if err := st.CanMint(id, account); err != nil {
			return err
		}
		st.ApplyMint(id, account)
		return nil
	})
	s.observe("mint", err)
	if err != nil {
		return s.wrap(err, "failed to mint soul")
	}
	s.audit.emitSoulMinted(ctx, signer, account, id)
	return nil
}

// Claim binds the id minted to the caller, storing the proof hashes.
func (s *Service) Claim(ctx context.Context, hashA, hashB domain.Hash) (domain.SoulID, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return domain.SoulID{}, err
	}

	var (
		id   domain.SoulID
		live int
	)
	err = s.tx.RunInTx(ctx, func(_ context.Context, st *models.State) error {
		claimed, err := st.ApplyClaim(signer, hashA, hashB)
		if err != nil {
			return err
		}
		id = claimed
		live = len(st.Souls)
		return nil
	})
	s.observe("claim", err)
	if err != nil {
		return domain.SoulID{}, s.wrap(err, "failed to claim soul")
	}
	s.cfg.metrics.SetLiveSouls(live)
	s.audit.emitSoulClaimed(ctx, signer, id)
	return id, nil
}

// ResolveID returns the soul id bound to account.
func (s *Service) ResolveID(ctx context.Context, account domain.AccountID) (domain.SoulID, error) {
	var id domain.SoulID
	err := s.tx.View(ctx, func(_ context.Context, st *models.State) error {
		var err error
		id, err = st.ResolveID(account)
		return err
	})
	s.observe("resolve_id", err)
	if err != nil {
		return domain.SoulID{}, s.wrap(err, "failed to resolve soul id")
	}
	return id, nil
}

// ResolveAccount returns the account bound to a live soul id.
func (s *Service) ResolveAccount(ctx context.Context, id domain.SoulID) (domain.AccountID, error) {
	var account domain.AccountID
	err := s.tx.View(ctx, func(_ context.Context, st *models.State) error {
		var err error
		account, err = st.ResolveAccount(id)
		return err
	})
	s.observe("resolve_account", err)
	if err != nil {
		return "", s.wrap(err, "failed to resolve account")
	}
	return account, nil
}

// Burn removes the caller's soul and bijection entries together.
func (s *Service) Burn(ctx context.Context) (domain.SoulID, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return domain.SoulID{}, err
	}

	var (
		id   domain.SoulID
		live int
	)
	err = s.tx.RunInTx(ctx, func(_ context.Context, st *models.State) error {
		burned, err := st.ApplyBurn(signer)
		if err != nil {
			return err
		}
		id = burned
		live = len(st.Souls)
		return nil
	})
	s.observe("burn", err)
	if err != nil {
		return domain.SoulID{}, s.wrap(err, "failed to burn soul")
	}
	s.cfg.metrics.SetLiveSouls(live)
	s.audit.emitSoulBurned(ctx, signer, id)
	return id, nil
}

// HasIdentity reports whether account holds a live soul. Storage faults are
// logged and reported as false.
func (s *Service) HasIdentity(ctx context.Context, account domain.AccountID) bool {
	var has bool
	err := s.tx.View(ctx, func(_ context.Context, st *models.State) error {
		has = st.HasIdentity(account)
		return nil
	})
	if err != nil {
		if s.cfg.logger != nil {
			s.cfg.logger.ErrorContext(ctx, "has_identity lookup failed",
				"account", account,
				"error", err,
			)
		}
		return false
	}
	return has
}

// HashedData returns the caller's proof hashes.
func (s *Service) HashedData(ctx context.Context) ([2]domain.Hash, error) {
	signer, err := requireSigner(ctx)
	if err != nil {
		return [2]domain.Hash{}, err
	}
	var out [2]domain.Hash
	err = s.tx.View(ctx, func(_ context.Context, st *models.State) error {
		soul, ok := st.LiveSoul(signer)
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "caller has no soul")
		}
		out = [2]domain.Hash{soul.HashA, soul.HashB}
		return nil
	})
	if err != nil {
		return [2]domain.Hash{}, s.wrap(err, "failed to read soul hashes")
	}
	return out, nil
}

func (s *Service) Ping() bool { return true }

func (s *Service) PingString() string { return "I'm okey" }

// HashProof digests raw proof material (a handle, an email address) into the
// form Claim stores.
func HashProof(material string) domain.Hash {
	return domain.Hash(sha3.Sum256([]byte(material)))
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

func (s *Service) observe(op string, err error) {
	if err == nil {
		s.cfg.metrics.IncOperation(op, "ok")
		return
	}
	s.cfg.metrics.IncOperation(op, string(dErrors.CodeOf(err)))
}

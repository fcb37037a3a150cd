package models

import (
	"slices"
	"time"

	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Achievement is an issued credential with an escrowed balance.
// Lifecycle: minted, accepted by its owner, verified by its verifier.
type Achievement struct {
	ID          domain.AchievementID   `json:"id"`
	Type        domain.AchievementType `json:"type"`
	Issuer      domain.SoulID          `json:"issuer"`
	Owner       domain.SoulID          `json:"owner"`
	IsAccepted  bool                   `json:"is_accepted"`
	Verifier    domain.SoulID          `json:"verifier"`
	IsVerified  bool                   `json:"is_verified"`
	DataPointer string                 `json:"data_pointer"`
	Balance     domain.Amount          `json:"balance"`
}

// Op names a mutating entry point that waits on identity resolution.
type Op string

const (
	OpMint        Op = "mint"
	OpBurn        Op = "burn"
	OpUpdateOwner Op = "update_owner"
	OpAccept      Op = "accept"
	OpVerify      Op = "verify"
)

// Stage is the step a pending request is waiting on.
type Stage uint8

const (
	// StageSigner waits for the signer's soul id.
	StageSigner Stage = iota + 1
	// StageTarget waits for the second lookup of a two-step operation: the new
	// owner's soul id or the verifier's payout account.
	StageTarget
)

// PendingRequest is a suspended mutation. It lives in state between the call
// that issued a resolution request and the result for Token.
type PendingRequest struct {
	Token resolution.Token
	// Origin is the token returned to the caller. It equals Token for the
	// first step and is carried across chained steps.
	Origin        resolution.Token
	Op            Op
	Stage         Stage
	Signer        domain.AccountID
	Expected      domain.SoulID
	AchievementID domain.AchievementID
	// Payload is the achievement being minted (OpMint only).
	Payload    Achievement
	NewAccount domain.AccountID
	// Held is deposit kept until the mint commits or aborts.
	Held     domain.Amount
	IssuedAt time.Time
}

// ExpectedKind is the resolution kind the stage waits for.
func (p PendingRequest) ExpectedKind() resolution.Kind {
	if p.Op == OpVerify && p.Stage == StageTarget {
		return resolution.KindAccount
	}
	return resolution.KindIdentifier
}

// State is the achievement registry aggregate.
//
// Invariants:
//   - id is in ByIssuer[x] iff Achievements[id].Issuer == x (same for ByOwner)
//   - index lists hold no duplicates and empty lists are removed
//   - a retired id is never live again
type State struct {
	Achievements map[domain.AchievementID]Achievement
	ByIssuer     map[domain.SoulID][]domain.AchievementID
	ByOwner      map[domain.SoulID][]domain.AchievementID
	Retired      map[domain.AchievementID]bool
	Pending      map[resolution.Token]PendingRequest
}

func NewState() *State {
	return &State{
		Achievements: make(map[domain.AchievementID]Achievement),
		ByIssuer:     make(map[domain.SoulID][]domain.AchievementID),
		ByOwner:      make(map[domain.SoulID][]domain.AchievementID),
		Retired:      make(map[domain.AchievementID]bool),
		Pending:      make(map[resolution.Token]PendingRequest),
	}
}

// Get returns the live achievement with id.
func (s *State) Get(id domain.AchievementID) (Achievement, error) {
	a, ok := s.Achievements[id]
	if !ok {
		return Achievement{}, dErrors.New(dErrors.CodeNotFound, "achievement not found")
	}
	return a, nil
}

// CanMint rejects ids that are live or were ever burned.
func (s *State) CanMint(a Achievement) error {
	if _, ok := s.Achievements[a.ID]; ok {
		return dErrors.New(dErrors.CodeDuplicateID, "achievement id already exists")
	}
	if s.Retired[a.ID] {
		return dErrors.New(dErrors.CodeDuplicateID, "achievement id was burned and cannot be reused")
	}
	return nil
}

func (s *State) ApplyMint(a Achievement) {
	s.Achievements[a.ID] = a
	s.ByIssuer[a.Issuer] = appendUnique(s.ByIssuer[a.Issuer], a.ID)
	s.ByOwner[a.Owner] = appendUnique(s.ByOwner[a.Owner], a.ID)
}

// CanBurn refuses achievements that still hold escrow. Burn moves no funds,
// so the balance has to leave through verification first.
func (s *State) CanBurn(id domain.AchievementID) (Achievement, error) {
	a, err := s.Get(id)
	if err != nil {
		return Achievement{}, err
	}
	if !a.Balance.IsZero() {
		return Achievement{}, dErrors.New(dErrors.CodeEscrowHeld, "achievement still holds escrow")
	}
	return a, nil
}

// ApplyBurn deletes the achievement and retires its id.
func (s *State) ApplyBurn(id domain.AchievementID) error {
	a, err := s.CanBurn(id)
	if err != nil {
		return err
	}
	removeIndexed(s.ByIssuer, a.Issuer, id)
	removeIndexed(s.ByOwner, a.Owner, id)
	delete(s.Achievements, id)
	s.Retired[id] = true
	return nil
}

// CanUpdateOwner requires the owner to be unset.
func (s *State) CanUpdateOwner(id domain.AchievementID) (Achievement, error) {
	a, err := s.Get(id)
	if err != nil {
		return Achievement{}, err
	}
	if !a.Owner.IsZero() {
		return Achievement{}, dErrors.New(dErrors.CodeOwnerAlreadySet, "achievement owner is already set")
	}
	return a, nil
}

func (s *State) ApplySetOwner(id domain.AchievementID, owner domain.SoulID) error {
	a, err := s.CanUpdateOwner(id)
	if err != nil {
		return err
	}
	removeIndexed(s.ByOwner, a.Owner, id)
	a.Owner = owner
	s.Achievements[id] = a
	s.ByOwner[owner] = appendUnique(s.ByOwner[owner], id)
	return nil
}

func (s *State) ApplyAccept(id domain.AchievementID) error {
	a, err := s.Get(id)
	if err != nil {
		return err
	}
	a.IsAccepted = true
	s.Achievements[id] = a
	return nil
}

// CanVerify rejects achievements that were already verified.
func (s *State) CanVerify(id domain.AchievementID) (Achievement, error) {
	a, err := s.Get(id)
	if err != nil {
		return Achievement{}, err
	}
	if a.IsVerified {
		return Achievement{}, dErrors.New(dErrors.CodeAlreadyVerified, "achievement is already verified")
	}
	return a, nil
}

// ApplyVerify marks the achievement verified and releases its balance,
// returning the amount to pay out.
func (s *State) ApplyVerify(id domain.AchievementID) (domain.Amount, error) {
	a, err := s.CanVerify(id)
	if err != nil {
		return domain.Amount{}, err
	}
	payout := a.Balance
	a.IsVerified = true
	a.Balance = domain.Amount{}
	s.Achievements[id] = a
	return payout, nil
}

// ApplyReplenish adds amount to the balance and returns the new balance.
func (s *State) ApplyReplenish(id domain.AchievementID, amount domain.Amount) (domain.Amount, error) {
	a, err := s.Get(id)
	if err != nil {
		return domain.Amount{}, err
	}
	balance, err := a.Balance.Add(amount)
	if err != nil {
		return domain.Amount{}, err
	}
	a.Balance = balance
	s.Achievements[id] = a
	return balance, nil
}

func (s *State) AddPending(p PendingRequest) {
	s.Pending[p.Token] = p
}

// TakePending removes and returns the pending request for token.
func (s *State) TakePending(token resolution.Token) (PendingRequest, bool) {
	p, ok := s.Pending[token]
	if ok {
		delete(s.Pending, token)
	}
	return p, ok
}

func (s *State) ListByIssuer(issuer domain.SoulID) []Achievement {
	return s.collect(s.ByIssuer[issuer])
}

func (s *State) ListByOwner(owner domain.SoulID) []Achievement {
	return s.collect(s.ByOwner[owner])
}

func (s *State) collect(ids []domain.AchievementID) []Achievement {
	out := make([]Achievement, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.Achievements[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks the index invariants.
func (s *State) Validate() error {
	if err := validateIndex(s.ByIssuer, s.Achievements, func(a Achievement) domain.SoulID { return a.Issuer }, "by_issuer"); err != nil {
		return err
	}
	if err := validateIndex(s.ByOwner, s.Achievements, func(a Achievement) domain.SoulID { return a.Owner }, "by_owner"); err != nil {
		return err
	}
	for id := range s.Achievements {
		if s.Retired[id] {
			return dErrors.New(dErrors.CodeInvariantViolation, "achievement "+id.String()+" is both live and retired")
		}
	}
	for token, p := range s.Pending {
		if p.Token != token {
			return dErrors.New(dErrors.CodeInvariantViolation, "pending request stored under foreign token "+string(token))
		}
	}
	return nil
}

func validateIndex(
	index map[domain.SoulID][]domain.AchievementID,
	live map[domain.AchievementID]Achievement,
	key func(Achievement) domain.SoulID,
	name string,
) error {
	seen := 0
	for soul, ids := range index {
		if len(ids) == 0 {
			return dErrors.New(dErrors.CodeInvariantViolation, name+" holds an empty list for "+soul.String())
		}
		for i, id := range ids {
			a, ok := live[id]
			if !ok || key(a) != soul {
				return dErrors.New(dErrors.CodeInvariantViolation, name+" entry "+id.String()+" does not match its achievement")
			}
			if slices.Contains(ids[:i], id) {
				return dErrors.New(dErrors.CodeInvariantViolation, name+" lists "+id.String()+" twice")
			}
		}
		seen += len(ids)
	}
	if seen != len(live) {
		return dErrors.New(dErrors.CodeInvariantViolation, name+" does not cover every achievement")
	}
	return nil
}

func appendUnique(ids []domain.AchievementID, id domain.AchievementID) []domain.AchievementID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// removeIndexed drops id from index[key] and deletes the list once empty.
func removeIndexed(index map[domain.SoulID][]domain.AchievementID, key domain.SoulID, id domain.AchievementID) {
	ids := index[key]
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(index, key)
		return
	}
	index[key] = ids
}

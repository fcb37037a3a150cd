package models

import (
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Soul is the identity record bound to a soul id. It is created on claim and
// replaced or removed as a whole, never edited field by field.
type Soul struct {
	ID    domain.SoulID
	HashA domain.Hash
	HashB domain.Hash
}

// State is the whole identity registry aggregate. It is loaded and persisted
// as one unit.
//
// Invariants:
//   - AccountOf and SoulIDOf are inverses for every id present in both
//   - an id is never in Souls and MintedNotClaimed at the same time
//   - every pending id has exactly one SoulIDOf entry pointing at it
type State struct {
	Souls            map[domain.SoulID]Soul
	SoulIDOf         map[domain.AccountID]domain.SoulID
	AccountOf        map[domain.SoulID]domain.AccountID
	MintedNotClaimed map[domain.SoulID]bool
}

func NewState() *State {
	return &State{
		Souls:            make(map[domain.SoulID]Soul),
		SoulIDOf:         make(map[domain.AccountID]domain.SoulID),
		AccountOf:        make(map[domain.SoulID]domain.AccountID),
		MintedNotClaimed: make(map[domain.SoulID]bool),
	}
}

// CanMint checks that id is free and account holds no id yet.
func (s *State) CanMint(id domain.SoulID, account domain.AccountID) error {
	if id.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "soul id must be non-zero")
	}
	if _, bound := s.Souls[id]; bound {
		return dErrors.New(dErrors.CodeAlreadyExists, "soul id is already bound")
	}
	if s.MintedNotClaimed[id] {
		return dErrors.New(dErrors.CodeAlreadyExists, "soul id is already pending")
	}
	if _, has := s.SoulIDOf[account]; has {
		return dErrors.New(dErrors.CodeAlreadyExists, "account already holds a soul id")
	}
	return nil
}

// ApplyMint reserves id for account.
func (s *State) ApplyMint(id domain.SoulID, account domain.AccountID) {
	s.SoulIDOf[account] = id
	s.MintedNotClaimed[id] = true
}

// ApplyClaim completes the binding of the id minted to account.
func (s *State) ApplyClaim(account domain.AccountID, hashA, hashB domain.Hash) (domain.SoulID, error) {
	id, ok := s.SoulIDOf[account]
	if !ok || !s.MintedNotClaimed[id] {
		return domain.SoulID{}, dErrors.New(dErrors.CodeNoPendingMint, "no pending mint for caller")
	}
	s.Souls[id] = Soul{ID: id, HashA: hashA, HashB: hashB}
	s.AccountOf[id] = account
	delete(s.MintedNotClaimed, id)
	return id, nil
}

// LiveSoul returns the claimed soul bound to account.
func (s *State) LiveSoul(account domain.AccountID) (Soul, bool) {
	id, ok := s.SoulIDOf[account]
	if !ok {
		return Soul{}, false
	}
	soul, ok := s.Souls[id]
	return soul, ok
}

// ResolveID returns the id bound to account. Pending mints do not resolve.
func (s *State) ResolveID(account domain.AccountID) (domain.SoulID, error) {
	soul, ok := s.LiveSoul(account)
	if !ok {
		return domain.SoulID{}, dErrors.New(dErrors.CodeNotFound, "account has no soul")
	}
	return soul.ID, nil
}

// ResolveAccount returns the account bound to id.
func (s *State) ResolveAccount(id domain.SoulID) (domain.AccountID, error) {
	if _, ok := s.Souls[id]; !ok {
		return "", dErrors.New(dErrors.CodeNotFound, "soul id has no live soul")
	}
	account, ok := s.AccountOf[id]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "live soul has no account binding")
	}
	return account, nil
}

// ApplyBurn removes account's soul and both bijection entries together.
func (s *State) ApplyBurn(account domain.AccountID) (domain.SoulID, error) {
	soul, ok := s.LiveSoul(account)
	if !ok {
		return domain.SoulID{}, dErrors.New(dErrors.CodeNotFound, "caller has no soul")
	}
	delete(s.Souls, soul.ID)
	delete(s.AccountOf, soul.ID)
	delete(s.SoulIDOf, account)
	return soul.ID, nil
}

func (s *State) HasIdentity(account domain.AccountID) bool {
	_, ok := s.LiveSoul(account)
	return ok
}

// Validate checks the aggregate invariants.
func (s *State) Validate() error {
	for id, account := range s.AccountOf {
		if s.SoulIDOf[account] != id {
			return dErrors.New(dErrors.CodeInvariantViolation, "account_of and soul_id_of disagree for "+id.String())
		}
		if _, ok := s.Souls[id]; !ok {
			return dErrors.New(dErrors.CodeInvariantViolation, "account binding without soul for "+id.String())
		}
	}
	for id := range s.Souls {
		if s.MintedNotClaimed[id] {
			return dErrors.New(dErrors.CodeInvariantViolation, "soul id both live and pending: "+id.String())
		}
		if _, ok := s.AccountOf[id]; !ok {
			return dErrors.New(dErrors.CodeInvariantViolation, "soul without account binding: "+id.String())
		}
	}
	pendingOwners := make(map[domain.SoulID]int, len(s.MintedNotClaimed))
	for account, id := range s.SoulIDOf {
		if s.MintedNotClaimed[id] {
			pendingOwners[id]++
			continue
		}
		if s.AccountOf[id] != account {
			return dErrors.New(dErrors.CodeInvariantViolation, "dangling soul_id_of entry for "+string(account))
		}
	}
	for id := range s.MintedNotClaimed {
		if pendingOwners[id] != 1 {
			return dErrors.New(dErrors.CodeInvariantViolation, "pending id not reserved for exactly one account: "+id.String())
		}
	}
	return nil
}

package models

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/near/borsh-go"

	"soulbound/pkg/domain"
)

const snapshotVersion uint8 = 1

// Maps are flattened into key-sorted slices so the same state always
// encodes to the same bytes.
type snapshot struct {
	Version   uint8
	Souls     []soulEntry
	SoulIDOf  []bindingEntry
	AccountOf []bindingEntry
	Pending   [][16]byte
}

type soulEntry struct {
	ID    [16]byte
	HashA [32]byte
	HashB [32]byte
}

type bindingEntry struct {
	Account string
	ID      [16]byte
}

// Codec persists State with Borsh.
type Codec struct{}

func (Codec) Empty() *State { return NewState() }

func (Codec) Encode(s *State) ([]byte, error) {
	snap := snapshot{Version: snapshotVersion}

	for id, soul := range s.Souls {
		snap.Souls = append(snap.Souls, soulEntry{ID: id.Bytes(), HashA: soul.HashA, HashB: soul.HashB})
	}
	slices.SortFunc(snap.Souls, func(a, b soulEntry) int { return bytes.Compare(a.ID[:], b.ID[:]) })

	for account, id := range s.SoulIDOf {
		snap.SoulIDOf = append(snap.SoulIDOf, bindingEntry{Account: string(account), ID: id.Bytes()})
	}
	slices.SortFunc(snap.SoulIDOf, func(a, b bindingEntry) int { return strings.Compare(a.Account, b.Account) })

	for id, account := range s.AccountOf {
		snap.AccountOf = append(snap.AccountOf, bindingEntry{Account: string(account), ID: id.Bytes()})
	}
	slices.SortFunc(snap.AccountOf, func(a, b bindingEntry) int { return bytes.Compare(a.ID[:], b.ID[:]) })

	for id, pending := range s.MintedNotClaimed {
		if pending {
			snap.Pending = append(snap.Pending, id.Bytes())
		}
	}
	slices.SortFunc(snap.Pending, func(a, b [16]byte) int { return bytes.Compare(a[:], b[:]) })

	return borsh.Serialize(snap)
}

func (Codec) Decode(data []byte) (*State, error) {
	var snap snapshot
	if err := borsh.Deserialize(&snap, data); err != nil {
		return nil, fmt.Errorf("deserialize identity snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported identity snapshot version %d", snap.Version)
	}

	s := NewState()
	for _, e := range snap.Souls {
		id := domain.SoulIDFromBytes(e.ID)
		s.Souls[id] = Soul{ID: id, HashA: e.HashA, HashB: e.HashB}
	}
	for _, e := range snap.SoulIDOf {
		s.SoulIDOf[domain.AccountID(e.Account)] = domain.SoulIDFromBytes(e.ID)
	}
	for _, e := range snap.AccountOf {
		s.AccountOf[domain.SoulIDFromBytes(e.ID)] = domain.AccountID(e.Account)
	}
	for _, raw := range snap.Pending {
		s.MintedNotClaimed[domain.SoulIDFromBytes(raw)] = true
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("identity snapshot: %w", err)
	}
	return s, nil
}

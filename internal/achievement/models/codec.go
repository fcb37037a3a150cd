package models

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/near/borsh-go"

	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
)

const snapshotVersion uint8 = 1

type snapshot struct {
	Version      uint8
	Achievements []achievementEntry
	ByIssuer     []indexEntry
	ByOwner      []indexEntry
	Retired      [][16]byte
	Pending      []pendingEntry
}

type achievementEntry struct {
	ID          [16]byte
	Type        [16]byte
	Issuer      [16]byte
	Owner       [16]byte
	IsAccepted  bool
	Verifier    [16]byte
	IsVerified  bool
	DataPointer string
	Balance     [16]byte
}

// indexEntry keeps list order; it is part of the observable state.
type indexEntry struct {
	Soul [16]byte
	IDs  [][16]byte
}

type pendingEntry struct {
	Token         string
	Origin        string
	Op            string
	Stage         uint8
	Signer        string
	Expected      [16]byte
	AchievementID [16]byte
	Payload       achievementEntry
	NewAccount    string
	Held          [16]byte
	IssuedAt      int64
}

// Codec persists State with Borsh.
type Codec struct{}

func (Codec) Empty() *State { return NewState() }

func (Codec) Encode(s *State) ([]byte, error) {
	snap := snapshot{Version: snapshotVersion}

	for _, a := range s.Achievements {
		snap.Achievements = append(snap.Achievements, encodeAchievement(a))
	}
	slices.SortFunc(snap.Achievements, func(a, b achievementEntry) int { return bytes.Compare(a.ID[:], b.ID[:]) })

	snap.ByIssuer = encodeIndex(s.ByIssuer)
	snap.ByOwner = encodeIndex(s.ByOwner)

	for id, retired := range s.Retired {
		if retired {
			snap.Retired = append(snap.Retired, id.Bytes())
		}
	}
	slices.SortFunc(snap.Retired, func(a, b [16]byte) int { return bytes.Compare(a[:], b[:]) })

	for _, p := range s.Pending {
		snap.Pending = append(snap.Pending, pendingEntry{
			Token:         string(p.Token),
			Origin:        string(p.Origin),
			Op:            string(p.Op),
			Stage:         uint8(p.Stage),
			Signer:        string(p.Signer),
			Expected:      p.Expected.Bytes(),
			AchievementID: p.AchievementID.Bytes(),
			Payload:       encodeAchievement(p.Payload),
			NewAccount:    string(p.NewAccount),
			Held:          p.Held.Bytes(),
			IssuedAt:      p.IssuedAt.UnixNano(),
		})
	}
	slices.SortFunc(snap.Pending, func(a, b pendingEntry) int { return strings.Compare(a.Token, b.Token) })

	return borsh.Serialize(snap)
}

func (Codec) Decode(data []byte) (*State, error) {
	var snap snapshot
	if err := borsh.Deserialize(&snap, data); err != nil {
		return nil, fmt.Errorf("deserialize achievement snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported achievement snapshot version %d", snap.Version)
	}

	s := NewState()
	for _, e := range snap.Achievements {
		a := decodeAchievement(e)
		s.Achievements[a.ID] = a
	}
	decodeIndex(snap.ByIssuer, s.ByIssuer)
	decodeIndex(snap.ByOwner, s.ByOwner)
	for _, raw := range snap.Retired {
		s.Retired[domain.AchievementIDFromBytes(raw)] = true
	}
	for _, e := range snap.Pending {
		p := PendingRequest{
			Token:         resolution.Token(e.Token),
			Origin:        resolution.Token(e.Origin),
			Op:            Op(e.Op),
			Stage:         Stage(e.Stage),
			Signer:        domain.AccountID(e.Signer),
			Expected:      domain.SoulIDFromBytes(e.Expected),
			AchievementID: domain.AchievementIDFromBytes(e.AchievementID),
			Payload:       decodeAchievement(e.Payload),
			NewAccount:    domain.AccountID(e.NewAccount),
			Held:          domain.AmountFromBytes(e.Held),
			IssuedAt:      time.Unix(0, e.IssuedAt).UTC(),
		}
		s.Pending[p.Token] = p
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("achievement snapshot: %w", err)
	}
	return s, nil
}

func encodeAchievement(a Achievement) achievementEntry {
	return achievementEntry{
		ID:          a.ID.Bytes(),
		Type:        a.Type.Bytes(),
		Issuer:      a.Issuer.Bytes(),
		Owner:       a.Owner.Bytes(),
		IsAccepted:  a.IsAccepted,
		Verifier:    a.Verifier.Bytes(),
		IsVerified:  a.IsVerified,
		DataPointer: a.DataPointer,
		Balance:     a.Balance.Bytes(),
	}
}

func decodeAchievement(e achievementEntry) Achievement {
	return Achievement{
		ID:          domain.AchievementIDFromBytes(e.ID),
		Type:        domain.AchievementTypeFromBytes(e.Type),
		Issuer:      domain.SoulIDFromBytes(e.Issuer),
		Owner:       domain.SoulIDFromBytes(e.Owner),
		IsAccepted:  e.IsAccepted,
		Verifier:    domain.SoulIDFromBytes(e.Verifier),
		IsVerified:  e.IsVerified,
		DataPointer: e.DataPointer,
		Balance:     domain.AmountFromBytes(e.Balance),
	}
}

func encodeIndex(index map[domain.SoulID][]domain.AchievementID) []indexEntry {
	out := make([]indexEntry, 0, len(index))
	for soul, ids := range index {
		if len(ids) == 0 {
			continue
		}
		e := indexEntry{Soul: soul.Bytes()}
		for _, id := range ids {
			e.IDs = append(e.IDs, id.Bytes())
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b indexEntry) int { return bytes.Compare(a.Soul[:], b.Soul[:]) })
	return out
}

func decodeIndex(entries []indexEntry, into map[domain.SoulID][]domain.AchievementID) {
	for _, e := range entries {
		ids := make([]domain.AchievementID, 0, len(e.IDs))
		for _, raw := range e.IDs {
			ids = append(ids, domain.AchievementIDFromBytes(raw))
		}
		into[domain.SoulIDFromBytes(e.Soul)] = ids
	}
}

// Package domain holds the value types shared by the identity and achievement
// registries. Every type parses at trust boundaries and rejects bad input with
// CodeInvalidInput.
package domain

import (
	"strings"

	"github.com/holiman/uint256"

	dErrors "soulbound/pkg/domain-errors"
)

// maxBits is the width of every numeric identifier and amount.
const maxBits = 128

// SoulID is the numeric identifier of a soul. Zero means "unset".
type SoulID uint256.Int

// AchievementID identifies an achievement. Ids are never reused.
type AchievementID uint256.Int

// AchievementType is an opaque classification carried on each achievement.
type AchievementType uint256.Int

// AccountID is the handle of an external principal (the signer of a call).
type AccountID string

func parseU128(s, field string) (uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uint256.Int{}, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+field)
	}
	if v.BitLen() > maxBits {
		return uint256.Int{}, dErrors.New(dErrors.CodeInvalidInput, field+" exceeds 128 bits")
	}
	return *v, nil
}

// ParseSoulID parses a decimal soul id. Zero is accepted here; callers that
// need a bound identity check IsZero.
func ParseSoulID(s string) (SoulID, error) {
	v, err := parseU128(s, "soul id")
	return SoulID(v), err
}

// NewSoulID builds a SoulID from a small integer.
func NewSoulID(n uint64) SoulID { return SoulID(*uint256.NewInt(n)) }

func (id SoulID) IsZero() bool { return (*uint256.Int)(&id).IsZero() }

func (id SoulID) String() string { return (*uint256.Int)(&id).Dec() }

// Bytes returns the 16-byte big-endian form.
func (id SoulID) Bytes() [16]byte { return to16((*uint256.Int)(&id)) }

// SoulIDFromBytes is the inverse of Bytes.
func SoulIDFromBytes(b [16]byte) SoulID { return SoulID(from16(b)) }

func (id SoulID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SoulID) UnmarshalText(b []byte) error {
	v, err := ParseSoulID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Less orders ids numerically.
func (id SoulID) Less(other SoulID) bool {
	return (*uint256.Int)(&id).Lt((*uint256.Int)(&other))
}

// ParseAchievementID parses a decimal achievement id.
func ParseAchievementID(s string) (AchievementID, error) {
	v, err := parseU128(s, "achievement id")
	return AchievementID(v), err
}

func NewAchievementID(n uint64) AchievementID { return AchievementID(*uint256.NewInt(n)) }

func (id AchievementID) IsZero() bool { return (*uint256.Int)(&id).IsZero() }

func (id AchievementID) String() string { return (*uint256.Int)(&id).Dec() }

func (id AchievementID) Bytes() [16]byte { return to16((*uint256.Int)(&id)) }

func AchievementIDFromBytes(b [16]byte) AchievementID { return AchievementID(from16(b)) }

func (id AchievementID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AchievementID) UnmarshalText(b []byte) error {
	v, err := ParseAchievementID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id AchievementID) Less(other AchievementID) bool {
	return (*uint256.Int)(&id).Lt((*uint256.Int)(&other))
}

// ParseAchievementType parses a decimal achievement type.
func ParseAchievementType(s string) (AchievementType, error) {
	v, err := parseU128(s, "achievement type")
	return AchievementType(v), err
}

func NewAchievementType(n uint64) AchievementType { return AchievementType(*uint256.NewInt(n)) }

func (t AchievementType) String() string { return (*uint256.Int)(&t).Dec() }

func (t AchievementType) Bytes() [16]byte { return to16((*uint256.Int)(&t)) }

func AchievementTypeFromBytes(b [16]byte) AchievementType { return AchievementType(from16(b)) }

func (t AchievementType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *AchievementType) UnmarshalText(b []byte) error {
	v, err := ParseAchievementType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

const (
	minAccountLen = 2
	maxAccountLen = 64
)

// ParseAccountID validates an account handle: 2 to 64 characters drawn from
// lowercase letters, digits and the separators '.', '_' and '-'.
func ParseAccountID(s string) (AccountID, error) {
	if len(s) < minAccountLen || len(s) > maxAccountLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id must be 2 to 64 characters")
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "account id contains invalid characters")
		}
	}
	return AccountID(s), nil
}

func (a AccountID) String() string { return string(a) }

func (a AccountID) IsZero() bool { return a == "" }

func to16(v *uint256.Int) [16]byte {
	full := v.Bytes32()
	var out [16]byte
	copy(out[:], full[16:])
	return out
}

func from16(b [16]byte) uint256.Int {
	var v uint256.Int
	v.SetBytes(b[:])
	return v
}

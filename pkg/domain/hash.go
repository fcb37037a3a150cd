package domain

import (
	"encoding/hex"

	dErrors "soulbound/pkg/domain-errors"
)

// Hash is a 32-byte digest of identity proof material.
type Hash [32]byte

// ParseHash decodes 64 hex characters.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != hex.EncodedLen(len(h)) {
		return Hash{}, dErrors.New(dErrors.CodeInvalidInput, "hash must be 64 hex characters")
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid hash")
	}
	return h, nil
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash) UnmarshalText(b []byte) error {
	v, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

package domain

import (
	"github.com/holiman/uint256"

	dErrors "soulbound/pkg/domain-errors"
)

// Amount is an unsigned 128-bit quantity of the transferable value unit.
// Arithmetic is checked: it never wraps.
type Amount uint256.Int

// ParseAmount parses a decimal amount.
func ParseAmount(s string) (Amount, error) {
	v, err := parseU128(s, "amount")
	return Amount(v), err
}

// NewAmount builds an Amount from a small integer.
func NewAmount(n uint64) Amount { return Amount(*uint256.NewInt(n)) }

func (a Amount) IsZero() bool { return (*uint256.Int)(&a).IsZero() }

func (a Amount) String() string { return (*uint256.Int)(&a).Dec() }

func (a Amount) Bytes() [16]byte { return to16((*uint256.Int)(&a)) }

func AmountFromBytes(b [16]byte) Amount { return Amount(from16(b)) }

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return (*uint256.Int)(&a).Cmp((*uint256.Int)(&b))
}

// Add returns a+b, or CodeOverflow when the sum does not fit in 128 bits.
func (a Amount) Add(b Amount) (Amount, error) {
	var sum uint256.Int
	// two 128-bit operands cannot overflow 256 bits
	sum.Add((*uint256.Int)(&a), (*uint256.Int)(&b))
	if sum.BitLen() > maxBits {
		return Amount{}, dErrors.New(dErrors.CodeOverflow, "amount overflows 128 bits")
	}
	return Amount(sum), nil
}

// Sub returns a-b, or CodeOverflow when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var diff uint256.Int
	if _, underflow := diff.SubOverflow((*uint256.Int)(&a), (*uint256.Int)(&b)); underflow {
		return Amount{}, dErrors.New(dErrors.CodeOverflow, "amount underflow")
	}
	return Amount(diff), nil
}

func (a Amount) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Amount) UnmarshalText(b []byte) error {
	v, err := ParseAmount(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

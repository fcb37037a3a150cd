package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "soulbound/pkg/domain-errors"
)

func TestParseSoulID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSoulID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-decimal input", func(t *testing.T) {
		_, err := ParseSoulID("0x10")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects values wider than 128 bits", func(t *testing.T) {
		// 2^128
		_, err := ParseSoulID("340282366920938463463374607431768211456")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts the largest 128-bit value", func(t *testing.T) {
		id, err := ParseSoulID("340282366920938463463374607431768211455")
		require.NoError(t, err)
		assert.Equal(t, "340282366920938463463374607431768211455", id.String())
	})

	t.Run("zero parses and reports IsZero", func(t *testing.T) {
		id, err := ParseSoulID("0")
		require.NoError(t, err)
		assert.True(t, id.IsZero())
	})
}

func TestSoulIDBytesRoundTrip(t *testing.T) {
	id, err := ParseSoulID("123456789012345678901234567890")
	require.NoError(t, err)
	assert.Equal(t, id, SoulIDFromBytes(id.Bytes()))
}

func TestIDsAreUsableAsMapKeys(t *testing.T) {
	m := map[SoulID]string{NewSoulID(7): "seven"}
	parsed, err := ParseSoulID("7")
	require.NoError(t, err)
	assert.Equal(t, "seven", m[parsed])
}

func TestIDsMarshalAsDecimalStrings(t *testing.T) {
	type payload struct {
		ID   AchievementID   `json:"id"`
		Type AchievementType `json:"type"`
	}
	body, err := json.Marshal(payload{ID: NewAchievementID(7), Type: NewAchievementType(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","type":"2"}`, string(body))

	var decoded payload
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, NewAchievementID(7), decoded.ID)
}

func TestParseAccountID(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		ok    bool
	}{
		{"plain", "alice.near", true},
		{"separators", "a_b-c.d", true},
		{"too short", "a", false},
		{"too long", strings.Repeat("a", 65), false},
		{"upper case", "Alice", false},
		{"spaces", "al ice", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAccountID(tc.input)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		sum, err := NewAmount(100).Add(NewAmount(50))
		require.NoError(t, err)
		assert.Equal(t, NewAmount(150), sum)
	})

	t.Run("add overflow past 128 bits", func(t *testing.T) {
		maxAmount, err := ParseAmount("340282366920938463463374607431768211455")
		require.NoError(t, err)
		_, err = maxAmount.Add(NewAmount(1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow))
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := NewAmount(150).Sub(NewAmount(100))
		require.NoError(t, err)
		assert.Equal(t, NewAmount(50), diff)
	})

	t.Run("sub underflow", func(t *testing.T) {
		_, err := NewAmount(1).Sub(NewAmount(2))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow))
	})

	t.Run("cmp", func(t *testing.T) {
		assert.Equal(t, -1, NewAmount(1).Cmp(NewAmount(2)))
		assert.Equal(t, 0, NewAmount(2).Cmp(NewAmount(2)))
		assert.Equal(t, 1, NewAmount(3).Cmp(NewAmount(2)))
	})
}

func TestParseHash(t *testing.T) {
	h, err := ParseHash(strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", 32), h.String())

	_, err = ParseHash("abcd")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseHash(strings.Repeat("zz", 32))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

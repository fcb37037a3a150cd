package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

func sample(id uint64) Achievement {
	return Achievement{
		ID:          domain.NewAchievementID(id),
		Type:        domain.NewAchievementType(1),
		Issuer:      domain.NewSoulID(10),
		Verifier:    domain.NewSoulID(30),
		DataPointer: "ipfs://cid",
		Balance:     domain.NewAmount(100),
	}
}

func TestMintAndIndexes(t *testing.T) {
	s := NewState()
	a := sample(7)
	require.NoError(t, s.CanMint(a))
	s.ApplyMint(a)

	assert.Equal(t, []domain.AchievementID{a.ID}, s.ByIssuer[a.Issuer])
	assert.Equal(t, []domain.AchievementID{a.ID}, s.ByOwner[domain.SoulID{}], "unowned achievements index under the zero id")
	assert.True(t, dErrors.HasCode(s.CanMint(a), dErrors.CodeDuplicateID))
	require.NoError(t, s.Validate())
}

func TestBurnRetiresID(t *testing.T) {
	s := NewState()
	a := sample(7)
	s.ApplyMint(a)

	err := s.ApplyBurn(a.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeEscrowHeld))
	_, err = s.Get(a.ID)
	require.NoError(t, err, "refused burn keeps the record and its escrow")

	_, err = s.ApplyVerify(a.ID)
	require.NoError(t, err)
	require.NoError(t, s.ApplyBurn(a.ID))

	_, err = s.Get(a.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Empty(t, s.ByIssuer)
	assert.Empty(t, s.ByOwner)
	assert.True(t, dErrors.HasCode(s.CanMint(a), dErrors.CodeDuplicateID), "burned ids are never reused")

	err = s.ApplyBurn(a.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSetOwnerOnce(t *testing.T) {
	s := NewState()
	a := sample(7)
	s.ApplyMint(a)

	require.NoError(t, s.ApplySetOwner(a.ID, domain.NewSoulID(20)))
	assert.Equal(t, []domain.AchievementID{a.ID}, s.ByOwner[domain.NewSoulID(20)])
	_, unowned := s.ByOwner[domain.SoulID{}]
	assert.False(t, unowned)

	err := s.ApplySetOwner(a.ID, domain.NewSoulID(21))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOwnerAlreadySet))
	require.NoError(t, s.Validate())
}

func TestVerifyReleasesBalanceOnce(t *testing.T) {
	s := NewState()
	a := sample(7)
	s.ApplyMint(a)

	payout, err := s.ApplyVerify(a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NewAmount(100), payout)

	got, _ := s.Get(a.ID)
	assert.True(t, got.IsVerified)
	assert.True(t, got.Balance.IsZero())

	_, err = s.ApplyVerify(a.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
}

func TestReplenishChecksOverflow(t *testing.T) {
	s := NewState()
	a := sample(7)
	s.ApplyMint(a)

	balance, err := s.ApplyReplenish(a.ID, domain.NewAmount(25))
	require.NoError(t, err)
	assert.Equal(t, domain.NewAmount(125), balance)

	ceiling, err := domain.ParseAmount("340282366920938463463374607431768211455")
	require.NoError(t, err)
	_, err = s.ApplyReplenish(a.ID, ceiling)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow))

	got, _ := s.Get(a.ID)
	assert.Equal(t, domain.NewAmount(125), got.Balance, "failed replenish leaves the balance alone")
}

func TestPendingRoundTripRestoresBytes(t *testing.T) {
	s := NewState()
	s.ApplyMint(sample(1))
	before, err := Codec{}.Encode(s)
	require.NoError(t, err)

	token := resolution.NewToken()
	s.AddPending(PendingRequest{Token: token, Origin: token, Op: OpVerify, Stage: StageSigner, Signer: "carol.near"})
	mid, err := Codec{}.Encode(s)
	require.NoError(t, err)
	assert.NotEqual(t, before, mid)

	_, ok := s.TakePending(token)
	require.True(t, ok)
	_, ok = s.TakePending(token)
	assert.False(t, ok)

	after, err := Codec{}.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCodecRoundTrip(t *testing.T) {
	s := NewState()
	for i := uint64(1); i <= 5; i++ {
		s.ApplyMint(sample(i))
	}
	require.NoError(t, s.ApplySetOwner(domain.NewAchievementID(2), domain.NewSoulID(20)))
	_, err := s.ApplyVerify(domain.NewAchievementID(3))
	require.NoError(t, err)
	require.NoError(t, s.ApplyBurn(domain.NewAchievementID(3)))

	token := resolution.NewToken()
	s.AddPending(PendingRequest{
		Token:    token,
		Origin:   token,
		Op:       OpMint,
		Stage:    StageSigner,
		Signer:   "alice.near",
		Expected: domain.NewSoulID(10),
		Payload:  sample(9),
		Held:     domain.NewAmount(100),
		IssuedAt: time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC),
	})

	encoded, err := Codec{}.Encode(s)
	require.NoError(t, err)
	decoded, err := Codec{}.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)

	again, err := Codec{}.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, again)
}

func TestDecodeRejectsBrokenIndex(t *testing.T) {
	s := NewState()
	s.ApplyMint(sample(1))
	s.ByIssuer[domain.NewSoulID(99)] = []domain.AchievementID{domain.NewAchievementID(1)}

	encoded, err := Codec{}.Encode(s)
	require.NoError(t, err)
	_, err = Codec{}.Decode(encoded)
	assert.Error(t, err)
}

func TestExpectedKind(t *testing.T) {
	assert.Equal(t, resolution.KindAccount, PendingRequest{Op: OpVerify, Stage: StageTarget}.ExpectedKind())
	assert.Equal(t, resolution.KindIdentifier, PendingRequest{Op: OpVerify, Stage: StageSigner}.ExpectedKind())
	assert.Equal(t, resolution.KindIdentifier, PendingRequest{Op: OpUpdateOwner, Stage: StageTarget}.ExpectedKind())
}

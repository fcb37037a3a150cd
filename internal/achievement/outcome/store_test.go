package outcome

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
)

type store interface {
	Put(ctx context.Context, o models.Outcome) error
	Get(ctx context.Context, token resolution.Token) (models.Outcome, error)
}

func runStoreContract(t *testing.T, s store) {
	ctx := context.Background()
	token := resolution.NewToken()

	_, err := s.Get(ctx, token)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	pending := models.Outcome{
		Token:         token,
		Op:            models.OpMint,
		AchievementID: domain.NewAchievementID(7),
		Status:        models.StatusPending,
		UpdatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Put(ctx, pending))
	got, err := s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, pending, got)

	aborted := pending
	aborted.Status = models.StatusAborted
	aborted.Code = "identity_mismatch"
	require.NoError(t, s.Put(ctx, aborted))
	got, err = s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAborted, got.Status)
	assert.Equal(t, "identity_mismatch", got.Code)
}

func TestInMemoryStore(t *testing.T) {
	runStoreContract(t, NewInMemoryStore(time.Hour))
}

func TestInMemoryStoreExpires(t *testing.T) {
	s := NewInMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	token := resolution.NewToken()
	require.NoError(t, s.Put(context.Background(), models.Outcome{Token: token, Status: models.StatusCommitted}))

	now = now.Add(2 * time.Minute)
	_, err := s.Get(context.Background(), token)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

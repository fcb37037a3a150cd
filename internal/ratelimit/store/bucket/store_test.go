package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"soulbound/internal/ratelimit/models"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

// BucketStoreSuite runs against every store implementation.
type BucketStoreSuite struct {
	suite.Suite
	newStore func() store
	store    store
	ctx      context.Context
}

func (s *BucketStoreSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, &BucketStoreSuite{newStore: func() store { return New() }})
}

func (s *BucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "test:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
	})

	s.Run("requests up to limit allowed", func() {
		var result *models.RateLimitResult
		var err error
		for range testLimit {
			result, err = s.store.Allow(s.ctx, "test:limit", testLimit, testWindow)
			s.Require().NoError(err)
		}
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("request over limit denied with retry hint", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "test:over", testLimit, testWindow)
			s.Require().NoError(err)
		}
		result, err := s.store.Allow(s.ctx, "test:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Positive(result.RetryAfter)
	})

	s.Run("keys are independent", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "test:a", testLimit, testWindow)
			s.Require().NoError(err)
		}
		result, err := s.store.Allow(s.ctx, "test:b", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})

	s.Run("reset clears the window", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "test:reset", testLimit, testWindow)
			s.Require().NoError(err)
		}
		s.Require().NoError(s.store.Reset(s.ctx, "test:reset"))
		result, err := s.store.Allow(s.ctx, "test:reset", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func TestInMemoryWindowSlides(t *testing.T) {
	store := New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for range 2 {
		result, err := store.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}
	result, err := store.Allow(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 60, result.RetryAfter)

	now = now.Add(time.Minute + time.Second)
	result, err = store.Allow(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "window slid past the first requests")
}

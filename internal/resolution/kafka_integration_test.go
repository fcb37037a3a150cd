//go:build integration

package resolution_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"soulbound/internal/platform/kafka"
	"soulbound/internal/resolution"
	"soulbound/internal/resolution/mocks"
	"soulbound/pkg/domain"
	"soulbound/pkg/testutil/containers"
)

func TestKafkaRoundTrip(t *testing.T) {
	broker := containers.StartRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	admin, err := kafka.NewClient([]string{broker})
	require.NoError(t, err)
	defer admin.Close()
	require.NoError(t, kafka.EnsureTopics(ctx, admin, 1, resolution.RequestsTopic, resolution.ResultsTopic))

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().ResolveID(gomock.Any(), domain.AccountID("alice.near")).Return(domain.NewSoulID(7), nil)

	responderClient, err := kafka.NewClient([]string{broker}, resolution.ConsumerOpts(resolution.ResponderGroup, resolution.RequestsTopic)...)
	require.NoError(t, err)
	defer responderClient.Close()
	go func() { _ = resolution.NewResponder(responderClient, resolver, 5*time.Second, logger, nil).Run(ctx) }()

	resultsClient, err := kafka.NewClient([]string{broker}, resolution.ConsumerOpts("soulbound-test-results", resolution.ResultsTopic)...)
	require.NoError(t, err)
	defer resultsClient.Close()

	delivered := make(chan resolution.Result, 1)
	go func() {
		_ = resolution.NewResultConsumer(resultsClient, logger).Run(ctx, resolution.HandlerFunc(
			func(_ context.Context, res resolution.Result) error {
				delivered <- res
				return nil
			}))
	}()

	producer := resolution.NewKafkaProducer(admin)
	req := resolution.IdentifierRequest(resolution.NewToken(), "alice.near", time.Now())
	require.NoError(t, producer.Enqueue(ctx, req))

	select {
	case res := <-delivered:
		assert.Equal(t, req.Token, res.Token)
		assert.False(t, res.Failed())
		assert.Equal(t, domain.NewSoulID(7), res.SoulID)
	case <-ctx.Done():
		t.Fatal("no result delivered")
	}
}

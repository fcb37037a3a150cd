//go:build integration

package outcome

import (
	"testing"
	"time"

	"soulbound/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	runStoreContract(t, NewRedisStore(containers.StartRedis(t), time.Hour))
}

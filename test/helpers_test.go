//go:build integration
// +build integration

package test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dschom/recoverykey/internal/store"
	"github.com/redis/go-redis/v9"
)

func newIntegrationStore(t *testing.T) (*store.RecoveryKeys, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	keys := store.New(rdb, "ark")

	return keys, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func makeRecord(recoveryKeyID string, enabled bool) *store.Record {
	return &store.Record{
		RecoveryKeyID: recoveryKeyID,
		RecoveryData:  []byte("wrapped-recovery-bundle"),
		Enabled:       enabled,
	}
}

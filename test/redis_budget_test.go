//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dschom/recoverykey/internal/store"
	"github.com/redis/go-redis/v9"
)

// cmdCounter is a go-redis Hook that counts the number of Redis round-trips
// (individual commands and pipeline calls).
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		// Each pipeline call is one network round-trip regardless of command count.
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func (h *cmdCounter) Commands() int64  { return h.commands.Load() }
func (h *cmdCounter) Pipelines() int64 { return h.pipelines.Load() }

// newCountedStore creates a recovery-key store backed by miniredis with a
// cmdCounter hook installed. Reset the counter before each measured operation.
func newCountedStore(t *testing.T) (*store.RecoveryKeys, *redis.Client, *cmdCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &cmdCounter{}
	rdb.AddHook(counter)

	// Warm the connection: go-redis may emit extra commands on first use
	// (handshake, AUTH, SELECT, CLIENT SETNAME, etc.). Issuing a PING
	// before measuring avoids counting that noise.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}

	// Reset after warmup so budget counts start clean.
	counter.Reset()

	keys := store.New(rdb, "ark")
	return keys, rdb, counter, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// TestCreateRedisBudget verifies that inserting a record uses exactly one
// Redis round-trip (SET NX on the account key).
func TestCreateRedisBudget(t *testing.T) {
	keys, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	counter.Reset()

	outcome, err := keys.Create(ctx, "acct-budget", makeRecord("kid-1", false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if outcome != store.CreateOK {
		t.Fatalf("expected CreateOK, got %v", outcome)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Create used %d Redis commands; budget is 1 (SETNX)", cmds)
	}
	t.Logf("Create: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestExistsRedisBudget verifies that the membership check is a single GET:
// the enabled bit lives inside the record so no second read is needed.
func TestExistsRedisBudget(t *testing.T) {
	keys, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := keys.Create(ctx, "acct-exists", makeRecord("kid-1", true)); err != nil {
		t.Fatalf("create: %v", err)
	}

	counter.Reset()

	exists, err := keys.Exists(ctx, "acct-exists")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected enabled record to exist")
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Exists used %d Redis commands; budget is 1 (GET)", cmds)
	}
	t.Logf("Exists: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestEnableRedisBudget verifies that enabling a record is a single Lua
// script call. go-redis may issue EVALSHA first, then fall back to EVAL on
// cache miss, so the first call counts as ≤ 2 commands.
func TestEnableRedisBudget(t *testing.T) {
	keys, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := keys.Create(ctx, "acct-enable", makeRecord("kid-1", false)); err != nil {
		t.Fatalf("create: %v", err)
	}

	counter.Reset()

	if err := keys.Enable(ctx, "acct-enable", "kid-1"); err != nil {
		t.Fatalf("enable: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("Enable used %d Redis commands; budget is ≤ 2 (EVALSHA + EVAL fallback)", cmds)
	}
	t.Logf("Enable: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestUpdateHintRedisBudget verifies that the guarded hint write is a single
// Lua script call (same EVALSHA/EVAL allowance as Enable).
func TestUpdateHintRedisBudget(t *testing.T) {
	keys, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := keys.Create(ctx, "acct-hint", makeRecord("kid-1", true)); err != nil {
		t.Fatalf("create: %v", err)
	}

	counter.Reset()

	if err := keys.UpdateHint(ctx, "acct-hint", "top drawer"); err != nil {
		t.Fatalf("update hint: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("UpdateHint used %d Redis commands; budget is ≤ 2 (EVALSHA + EVAL fallback)", cmds)
	}
	t.Logf("UpdateHint: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestDeleteRedisBudget verifies that removal takes one round-trip: the
// record and hint keys go in a single DEL.
func TestDeleteRedisBudget(t *testing.T) {
	keys, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := keys.Create(ctx, "acct-delete", makeRecord("kid-1", true)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := keys.UpdateHint(ctx, "acct-delete", "under the mattress"); err != nil {
		t.Fatalf("update hint: %v", err)
	}

	counter.Reset()

	if err := keys.Delete(ctx, "acct-delete"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Delete used %d Redis commands; budget is 1 (multi-key DEL)", cmds)
	}
	t.Logf("Delete: %d commands, %d pipelines", cmds, counter.Pipelines())
}

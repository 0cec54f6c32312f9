package recoverykey

import (
	"context"
	"errors"
	"testing"
)

func TestExistsWithSession(t *testing.T) {
	f := newTestService(t, serviceTestConfig())
	ctx := context.Background()

	result, err := f.service.Exists(ctx, verifiedSession("acct-1"), "")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if result.Exists {
		t.Fatal("expected no key")
	}

	if err := f.service.Create(ctx, verifiedSession("acct-1"), "kid-1", []byte("blob"), true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	result, err = f.service.Exists(ctx, verifiedSession("acct-1"), "")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !result.Exists {
		t.Fatal("expected enabled key to exist")
	}
}

func TestExistsUnverifiedSessionAllowed(t *testing.T) {
	f := newTestService(t, serviceTestConfig())
	ctx := context.Background()

	if err := f.service.Create(ctx, verifiedSession("acct-1"), "kid-1", []byte("blob"), true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Read-only checks are fine on an unverified session; only mutations
	// are gated.
	result, err := f.service.Exists(ctx, unverifiedSession("acct-1"), "")
	if err != nil {
		t.Fatalf("Exists failed for unverified session: %v", err)
	}
	if !result.Exists {
		t.Fatal("expected enabled key to exist")
	}
}

func TestExistsAnonymousByEmail(t *testing.T) {
	f := newTestService(t, serviceTestConfig())
	ctx := context.Background()

	if err := f.service.Create(ctx, verifiedSession("acct-1"), "kid-1", []byte("blob"), true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	result, err := f.service.Exists(ctx, nil, "acct-1@example.com")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !result.Exists {
		t.Fatal("expected enabled key to exist")
	}
}

func TestExistsAnonymousRequiresEmail(t *testing.T) {
	f := newTestService(t, serviceTestConfig())

	_, err := f.service.Exists(context.Background(), nil, "")
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestExistsUnknownEmailNotAnOracle(t *testing.T) {
	f := newTestService(t, serviceTestConfig())

	result, err := f.service.Exists(context.Background(), nil, "nobody@example.com")
	if err != nil {
		t.Fatalf("expected unknown email to report plain non-existence, got %v", err)
	}
	if result.Exists {
		t.Fatal("expected exists=false for unknown email")
	}
}

func TestExistsAnonymousRateLimited(t *testing.T) {
	cfg := serviceTestConfig()
	cfg.AbuseGuard.MaxChecks = 3
	f := newTestService(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.service.Exists(ctx, nil, "acct-1@example.com"); err != nil {
			t.Fatalf("check %d failed: %v", i+1, err)
		}
	}

	_, err := f.service.Exists(ctx, nil, "acct-1@example.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on check 4, got %v", err)
	}

	ev := waitAuditEvent(t, f.sink, auditEventRateLimitTriggered)
	if ev.Metadata["scope"] != "exists" {
		t.Fatalf("expected exists scope, got %+v", ev.Metadata)
	}
	if got := f.service.MetricsSnapshot().Counters[MetricExistsRateLimited]; got != 1 {
		t.Fatalf("expected 1 rate-limited check, got %d", got)
	}

	// A different email has its own budget.
	if _, err := f.service.Exists(ctx, nil, "other@example.com"); err != nil {
		t.Fatalf("expected independent budget per email, got %v", err)
	}
}

func TestExistsSessionPathNotRateLimited(t *testing.T) {
	cfg := serviceTestConfig()
	cfg.AbuseGuard.MaxChecks = 1
	f := newTestService(t, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := f.service.Exists(ctx, verifiedSession("acct-1"), ""); err != nil {
			t.Fatalf("session-backed check %d failed: %v", i+1, err)
		}
	}
}

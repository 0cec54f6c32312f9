package recoverykey

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dschom/recoverykey/resettoken"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func serviceTestConfig() Config {
	cfg := DefaultConfig()
	cfg.AbuseGuard.MaxChecks = 3
	cfg.AbuseGuard.Window = time.Minute
	cfg.Audit.BufferSize = 64
	cfg.Audit.DropIfFull = false
	return cfg
}

func verifiedSession(accountID string) *Session {
	return &Session{AccountID: accountID}
}

func unverifiedSession(accountID string) *Session {
	return &Session{AccountID: accountID, Unverified: true}
}

// fakeDirectory is an in-memory AccountDirectory.
type fakeDirectory struct {
	mu      sync.RWMutex
	byID    map[string]AccountRecord
	byEmail map[string]string
	// failHydration makes AccountByID fail, simulating a directory outage
	// during notification hydration.
	failHydration bool
}

func newFakeDirectory(accounts ...AccountRecord) *fakeDirectory {
	d := &fakeDirectory{
		byID:    make(map[string]AccountRecord),
		byEmail: make(map[string]string),
	}
	for _, a := range accounts {
		d.byID[a.AccountID] = a
		for _, email := range a.Emails {
			d.byEmail[strings.ToLower(email)] = a.AccountID
		}
	}
	return d
}

func (d *fakeDirectory) ResolveEmail(_ context.Context, email string) (AccountRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return AccountRecord{}, ErrUnknownAccount
	}
	return d.byID[id], nil
}

func (d *fakeDirectory) AccountByID(_ context.Context, accountID string) (AccountRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.failHydration {
		return AccountRecord{}, ErrUnknownAccount
	}
	a, ok := d.byID[accountID]
	if !ok {
		return AccountRecord{}, ErrUnknownAccount
	}
	return a, nil
}

// countingMailer records notification dispatches.
type countingMailer struct {
	added   atomic.Int64
	removed atomic.Int64
	fail    atomic.Bool

	mu         sync.Mutex
	recipients [][]string
}

func (m *countingMailer) SendPostAddRecoveryKeyEmail(_ context.Context, addresses []string, _ AccountRecord, _ EmailMeta) error {
	if m.fail.Load() {
		return errMailerDown
	}
	m.added.Add(1)
	m.mu.Lock()
	m.recipients = append(m.recipients, addresses)
	m.mu.Unlock()
	return nil
}

func (m *countingMailer) SendPostRemoveRecoveryKeyEmail(_ context.Context, addresses []string, _ AccountRecord, _ EmailMeta) error {
	if m.fail.Load() {
		return errMailerDown
	}
	m.removed.Add(1)
	m.mu.Lock()
	m.recipients = append(m.recipients, addresses)
	m.mu.Unlock()
	return nil
}

func (m *countingMailer) Recipients() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.recipients))
	copy(out, m.recipients)
	return out
}

var errMailerDown = errors.New("mailer down")

type serviceFixture struct {
	service *Service
	mailer  *countingMailer
	dir     *fakeDirectory
	sink    *ChannelSink
	redis   *miniredis.Miniredis
	tokens  *resettoken.Manager
}

func testAccount(accountID string) AccountRecord {
	return AccountRecord{
		AccountID:    accountID,
		PrimaryEmail: accountID + "@example.com",
		Emails:       []string{accountID + "@example.com", accountID + "@backup.example.com"},
		Locale:       "en-US",
	}
}

func newTestService(t *testing.T, cfg Config, accounts ...AccountRecord) *serviceFixture {
	t.Helper()

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	if len(accounts) == 0 {
		accounts = []AccountRecord{testAccount("acct-1")}
	}

	tokens, err := resettoken.NewManager(resettoken.Config{
		TTL:    5 * time.Minute,
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "recoverykey-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	f := &serviceFixture{
		mailer: &countingMailer{},
		dir:    newFakeDirectory(accounts...),
		sink:   NewChannelSink(64),
		redis:  mr,
		tokens: tokens,
	}

	service, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountDirectory(f.dir).
		WithMailer(f.mailer).
		WithAuditSink(f.sink).
		WithResetTokens(tokens).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(service.Close)

	f.service = service
	return f
}

// waitAuditEvent blocks until the sink yields an event of the given type.
func waitAuditEvent(t *testing.T, sink *ChannelSink, eventType string) AuditEvent {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sink.Events():
			if ev.EventType == eventType {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for audit event %q", eventType)
		}
	}
}

// waitMailCount polls until the mailer observed want dispatches of the kind.
func waitMailCount(t *testing.T, counter *atomic.Int64, want int64) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counter.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d mail dispatches, got %d", want, counter.Load())
}

package recoverykey

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := serviceTestConfig()
	cfg.Audit.Enabled = false

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	sink := &countingSink{}
	service, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountDirectory(newFakeDirectory(testAccount("acct-1"))).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(service.Close)

	ctx := context.Background()
	if err := service.Create(ctx, verifiedSession("acct-1"), "kid-1", []byte("blob"), true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := service.Delete(ctx, verifiedSession("acct-1")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditEnabledSinkReceivesEventWithFields(t *testing.T) {
	f := newTestService(t, serviceTestConfig())

	ctx := WithClientIP(context.Background(), "198.51.100.33")
	secretData := []byte("client-encrypted-bundle")
	if err := f.service.Create(ctx, verifiedSession("acct-1"), "kid-1", secretData, true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ev := waitAuditEvent(t, f.sink, auditEventRecoveryKeyAdded)
	if ev.EventID == "" {
		t.Fatal("expected event id to be populated")
	}
	if ev.AccountID != "acct-1" {
		t.Fatalf("expected account acct-1, got %q", ev.AccountID)
	}
	if ev.IP != "198.51.100.33" {
		t.Fatalf("expected IP 198.51.100.33, got %q", ev.IP)
	}
	if !ev.Success {
		t.Fatal("expected success event")
	}
	if stringContains(ev.Error, string(secretData)) {
		t.Fatal("recovery data leaked in audit error")
	}
	for _, v := range ev.Metadata {
		if stringContains(v, string(secretData)) {
			t.Fatal("recovery data leaked in audit metadata")
		}
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	event := AuditEvent{
		EventID:   "ev-1",
		Timestamp: time.Now().UTC(),
		EventType: auditEventRecoveryKeyAdded,
		AccountID: "acct-1",
		IP:        "127.0.0.1",
		Success:   true,
	}
	sink.Emit(context.Background(), event)

	if !buf.Contains("recovery_key_added") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"account_id\":\"acct-1\"") {
		t.Fatal("expected JSON log line to contain account id")
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, &countingSink{})

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	f := newTestService(t, serviceTestConfig())

	ctx := context.Background()
	recoveryData := "super-secret-encrypted-bundle"

	if err := f.service.Create(ctx, verifiedSession("acct-1"), "kid-1", []byte(recoveryData), false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.service.Verify(ctx, verifiedSession("acct-1"), "kid-1"); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if err := f.service.Delete(ctx, verifiedSession("acct-1")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Collect a bounded number of audit events generated by the operations above.
	events := make([]AuditEvent, 0, 8)
	timeout := time.After(2 * time.Second)
collectLoop:
	for len(events) < 3 {
		select {
		case ev := <-f.sink.Events():
			events = append(events, ev)
		case <-timeout:
			break collectLoop
		}
	}

	if len(events) == 0 {
		t.Fatal("expected at least one audit event")
	}

	for _, ev := range events {
		if stringContains(ev.Error, recoveryData) {
			t.Fatal("recovery data leaked in audit error field")
		}
		for k, v := range ev.Metadata {
			if stringContains(k, recoveryData) || stringContains(v, recoveryData) {
				t.Fatal("recovery data leaked in audit metadata")
			}
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return stringContains(string(b.buf), v)
}

func stringContains(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	if len(sub) > len(s) {
		return false
	}
	for i := 0; i <= len(s)-len(sub); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestAuditDispatcherScrubsKeyMaterialMetadata(t *testing.T) {
	sink := NewChannelSink(4)
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
	}, sink)

	dispatcher.Emit(context.Background(), AuditEvent{
		EventType: "recovery_key_added",
		Metadata: map[string]string{
			"recoveryData": "0xdeadbeef",
			"wrapKb":       "0xcafe",
			"identifier":   "alice@example.com",
		},
	})
	dispatcher.Close()

	select {
	case event := <-sink.Events():
		if _, ok := event.Metadata["recoveryData"]; ok {
			t.Fatal("recoveryData must be scrubbed before the sink sees the event")
		}
		if _, ok := event.Metadata["wrapKb"]; ok {
			t.Fatal("wrapKb must be scrubbed before the sink sees the event")
		}
		if event.Metadata["identifier"] != "alice@example.com" {
			t.Fatalf("non-secret metadata must survive the scrub, got %+v", event.Metadata)
		}
	default:
		t.Fatal("expected the scrubbed event to be delivered")
	}
}

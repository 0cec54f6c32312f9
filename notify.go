package recoverykey

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// notifier dispatches best-effort security notifications. Dispatch happens
// strictly after the state-mutating store call has committed, on a detached
// goroutine with its own deadline: a mailer failure is logged and counted
// but is invisible to the caller of the mutating operation.
type notifier struct {
	cfg     NotificationConfig
	mailer  Mailer
	metrics *Metrics
	wg      sync.WaitGroup
	failed  atomic.Uint64
	closed  atomic.Bool
}

type notifyKind uint8

const (
	notifyPostAdd notifyKind = iota
	notifyPostRemove
)

func newNotifier(cfg NotificationConfig, mailer Mailer, metrics *Metrics) *notifier {
	if !cfg.Enabled || mailer == nil {
		return nil
	}
	return &notifier{
		cfg:     cfg,
		mailer:  mailer,
		metrics: metrics,
	}
}

func (n *notifier) dispatch(ctx context.Context, kind notifyKind, account AccountRecord) {
	if n == nil || n.closed.Load() {
		return
	}

	meta := EmailMeta{
		ClientIP:       clientIPFromContext(ctx),
		UserAgent:      userAgentFromContext(ctx),
		AcceptLanguage: localeFromContext(ctx),
		DispatchID:     uuid.NewString(),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// Detached from the request context: the response must not wait on
		// the mailer, and a request timeout must not cancel the email.
		sendCtx, cancel := context.WithTimeout(context.Background(), n.cfg.DispatchTimeout)
		defer cancel()

		var err error
		switch kind {
		case notifyPostAdd:
			err = n.mailer.SendPostAddRecoveryKeyEmail(sendCtx, account.Emails, account, meta)
		case notifyPostRemove:
			err = n.mailer.SendPostRemoveRecoveryKeyEmail(sendCtx, account.Emails, account, meta)
		}
		if err != nil {
			n.failed.Add(1)
			if n.metrics != nil {
				n.metrics.Inc(MetricNotifyFailed)
			}
			log.Print("recoverykey: notification dispatch failed dispatch_id=" + meta.DispatchID)
			return
		}
		if n.metrics != nil {
			n.metrics.Inc(MetricNotifyDispatched)
		}
	}()
}

// Failed reports the number of dispatches that returned a mailer error.
func (n *notifier) Failed() uint64 {
	if n == nil {
		return 0
	}
	return n.failed.Load()
}

// Close waits for in-flight dispatches to finish.
func (n *notifier) Close() {
	if n == nil {
		return
	}
	n.closed.Store(true)
	n.wg.Wait()
}

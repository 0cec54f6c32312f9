package recoverykey

import (
	"errors"

	"github.com/dschom/recoverykey/internal/guard"
	"github.com/dschom/recoverykey/internal/store"
	"github.com/redis/go-redis/v9"
)

const storePrefix = "ark"

// Builder defines a public type used by recoverykey APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory   AccountDirectory
	mailer      Mailer
	auditSink   AuditSink
	resetTokens ResetTokenParser

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountDirectory describes the withaccountdirectory operation and its observable behavior.
//
// WithAccountDirectory may return an error when input validation, dependency calls, or security checks fail.
// WithAccountDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAccountDirectory(dir AccountDirectory) *Builder {
	b.directory = dir
	return b
}

// WithMailer describes the withmailer operation and its observable behavior.
//
// WithMailer may return an error when input validation, dependency calls, or security checks fail.
// WithMailer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithResetTokens describes the withresettokens operation and its observable behavior.
//
// WithResetTokens may return an error when input validation, dependency calls, or security checks fail.
// WithResetTokens does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithResetTokens(p ResetTokenParser) *Builder {
	b.resetTokens = p
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if b.directory == nil {
		return nil, errors.New("account directory required")
	}

	svc := &Service{
		config:      cfg,
		store:       store.New(b.redis, storePrefix),
		directory:   b.directory,
		resetTokens: b.resetTokens,
	}

	if cfg.AbuseGuard.Enabled {
		svc.guard = guard.New(b.redis, guard.Config{
			MaxChecks: cfg.AbuseGuard.MaxChecks,
			Window:    cfg.AbuseGuard.Window,
		})
	}

	svc.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	svc.metrics = NewMetrics(cfg.Metrics)
	svc.notify = newNotifier(cfg.Notifications, b.mailer, svc.metrics)

	b.built = true

	return svc, nil
}

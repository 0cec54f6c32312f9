package recoverykey

import (
	"errors"
	"time"
)

// Config defines a public type used by recoverykey APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AbuseGuard    AbuseGuardConfig
	Audit         AuditConfig
	Notifications NotificationConfig
	Metrics       MetricsConfig
}

/*
====================================
ABUSE GUARD CONFIG
====================================
*/

// AbuseGuardConfig defines a public type used by recoverykey APIs.
//
// AbuseGuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AbuseGuardConfig struct {
	Enabled bool
	// MaxChecks is the number of checks allowed per (keyspace, operation)
	// tuple inside one window. The MaxChecks-th call is allowed, the
	// MaxChecks+1-th is denied.
	MaxChecks int
	Window    time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by recoverykey APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
NOTIFICATION CONFIG
====================================
*/

// NotificationConfig defines a public type used by recoverykey APIs.
//
// NotificationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NotificationConfig struct {
	Enabled bool
	// DispatchTimeout bounds one best-effort mailer call. The mutating
	// operation never waits on it.
	DispatchTimeout time.Duration
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by recoverykey APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production-ready defaults: abuse guard on at
// 10 checks per 15 minutes, buffered drop-if-full audit, notifications on,
// counters on with latency histograms off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		AbuseGuard: AbuseGuardConfig{
			Enabled:   true,
			MaxChecks: 10,
			Window:    15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Notifications: NotificationConfig{
			Enabled:         true,
			DispatchTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the copy is here so future
	// reference-typed fields keep Builder.WithConfig isolation.
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.AbuseGuard.Enabled {
		if cfg.AbuseGuard.MaxChecks <= 0 {
			return errors.New("abuse guard MaxChecks must be positive")
		}
		if cfg.AbuseGuard.Window <= 0 {
			return errors.New("abuse guard Window must be positive")
		}
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize < 0 {
		return errors.New("audit BufferSize must not be negative")
	}
	if cfg.Notifications.Enabled && cfg.Notifications.DispatchTimeout <= 0 {
		return errors.New("notification DispatchTimeout must be positive")
	}
	return nil
}

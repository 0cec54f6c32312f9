package recoverykey

import "time"

// SecurityReport summarizes which protections the service was built with.
// Operators surface it on admin endpoints to confirm a deployment's posture
// without reading config files.
type SecurityReport struct {
	AbuseGuardActive     bool
	AbuseGuardMaxChecks  int
	AbuseGuardWindow     time.Duration
	AuditEnabled         bool
	AuditDropIfFull      bool
	NotificationsEnabled bool
	DispatchTimeout      time.Duration
	MetricsEnabled       bool
	LatencyHistograms    bool
	// ResetTokenFetchActive reports whether the password-reset fetch path
	// was wired with a token verifier at build time.
	ResetTokenFetchActive bool
}

// SecurityReport describes the securityreport operation and its observable behavior.
//
// SecurityReport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) SecurityReport() SecurityReport {
	if s == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		AbuseGuardActive:      s.config.AbuseGuard.Enabled && s.guard != nil,
		AbuseGuardMaxChecks:   s.config.AbuseGuard.MaxChecks,
		AbuseGuardWindow:      s.config.AbuseGuard.Window,
		AuditEnabled:          s.config.Audit.Enabled && s.audit != nil,
		AuditDropIfFull:       s.config.Audit.DropIfFull,
		NotificationsEnabled:  s.config.Notifications.Enabled && s.notify != nil,
		DispatchTimeout:       s.config.Notifications.DispatchTimeout,
		MetricsEnabled:        s.config.Metrics.Enabled,
		LatencyHistograms:     s.config.Metrics.EnableLatencyHistograms,
		ResetTokenFetchActive: s.resetTokens != nil,
	}
}

package internaldefs

import (
	recoverykey "github.com/dschom/recoverykey"
)

// CounterDef defines a public type used by recoverykey APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   recoverykey.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by recoverykey APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   recoverykey.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the recovery-key service.
var CounterDefs = []CounterDef{
	{ID: recoverykey.MetricCreateSuccess, Name: "recoverykey_create_success_total", Help: "Recovery keys created."},
	{ID: recoverykey.MetricCreateConflict, Name: "recoverykey_create_conflict_total", Help: "Create attempts rejected because an enabled key exists."},
	{ID: recoverykey.MetricCreateSuperseded, Name: "recoverykey_create_superseded_total", Help: "Creates that replaced an unverified in-progress key."},
	{ID: recoverykey.MetricVerifySuccess, Name: "recoverykey_verify_success_total", Help: "Successful recovery key verifications."},
	{ID: recoverykey.MetricVerifyFailure, Name: "recoverykey_verify_failure_total", Help: "Failed recovery key verifications."},
	{ID: recoverykey.MetricVerifyRateLimited, Name: "recoverykey_verify_rate_limited_total", Help: "Rate-limited verification attempts."},
	{ID: recoverykey.MetricExistsCheck, Name: "recoverykey_exists_check_total", Help: "Existence checks served."},
	{ID: recoverykey.MetricExistsRateLimited, Name: "recoverykey_exists_rate_limited_total", Help: "Rate-limited anonymous existence and hint lookups."},
	{ID: recoverykey.MetricHintRead, Name: "recoverykey_hint_read_total", Help: "Hint reads served."},
	{ID: recoverykey.MetricHintUpdated, Name: "recoverykey_hint_updated_total", Help: "Hint update operations."},
	{ID: recoverykey.MetricDeleteSuccess, Name: "recoverykey_delete_success_total", Help: "Recovery key delete operations."},
	{ID: recoverykey.MetricFetchSuccess, Name: "recoverykey_fetch_success_total", Help: "Successful recovery data fetches."},
	{ID: recoverykey.MetricFetchFailure, Name: "recoverykey_fetch_failure_total", Help: "Failed recovery data fetches."},
	{ID: recoverykey.MetricRateLimitHit, Name: "recoverykey_rate_limit_hit_total", Help: "Abuse-guard checks that denied requests."},
	{ID: recoverykey.MetricUnverifiedSessionRejected, Name: "recoverykey_unverified_session_rejected_total", Help: "Mutations rejected for unverified sessions."},
	{ID: recoverykey.MetricNotifyDispatched, Name: "recoverykey_notify_dispatched_total", Help: "Notification emails dispatched."},
	{ID: recoverykey.MetricNotifyFailed, Name: "recoverykey_notify_failed_total", Help: "Notification dispatches that failed."},
}

// HistogramDefs is an exported constant or variable used by the recovery-key service.
var HistogramDefs = []HistogramDef{
	{ID: recoverykey.MetricFetchLatency, Name: "recoverykey_fetch_latency_seconds", Help: "Recovery data fetch latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the recovery-key service.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the recovery-key service.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

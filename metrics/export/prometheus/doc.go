// Package prometheus provides Prometheus collectors for recoverykey metrics.
//
// [NewPrometheusExporter] accepts a [recoverykey.Service] and exposes an [http.Handler]
// that renders all recoverykey counters and histograms in Prometheus text exposition
// format. Counter names are prefixed recoverykey_*_total; the single histogram is
// recoverykey_fetch_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate service state.
package prometheus

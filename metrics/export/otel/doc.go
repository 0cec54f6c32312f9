// Package otel provides OpenTelemetry metric exporter bindings for recoverykey
// counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each recoverykey
// metric and Int64ObservableGauge per histogram bucket. A single callback reads
// [recoverykey.Service.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate service state.
package otel

// Package telemetry wires OpenTelemetry tracing. Batch runs open a root span
// and every per-tool probe, install, and update opens a child span. Export is
// off unless an OTLP endpoint is configured.
package telemetry

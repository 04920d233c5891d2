// Package otel bridges engine counters to an OpenTelemetry meter using
// observable instruments, so collection happens on the reader's schedule
// rather than on the request path.
package otel

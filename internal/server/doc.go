// Package server runs the operational HTTP endpoints of chatcal on a
// dedicated port, separate from any chat transport:
//
//   - /metrics: Prometheus scrape endpoint backed by the instrumentation provider
//   - /healthz: liveness
//   - /readyz: readiness, failing while any registered check fails
package server

// Package inference talks to an external inference server. It is structured
// into small files by concern:
//
//   - client.go: HTTP client for the v2 health/repository surface.
//   - runner.go: subprocess launch, bounded readiness polling, scoped shutdown.
//   - errors.go: error types and helpers (IsExitedEarly, IsReadyTimeout).
package inference

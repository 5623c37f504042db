// Package breaker implements a named circuit breaker for guarding calls to
// unreliable collaborators such as inference services and external APIs.
//
// A breaker is a small state machine with three states:
//
//   - Closed: calls pass through. Failures are counted over a sliding time
//     window; when the window reaches the failure threshold the breaker opens.
//   - Open: calls are rejected immediately (or served by a configured
//     fallback) until the recovery timeout elapses, at which point the next
//     access moves the breaker to half-open.
//   - HalfOpen: calls pass through as recovery probes. A run of consecutive
//     successes closes the breaker; a single failure reopens it.
//
// Breakers are obtained from a Registry, which guarantees one instance per
// protected resource name. All state transitions are serialized under a
// per-breaker mutex, so concurrent callers racing a threshold crossing
// observe exactly one transition.
package breaker

// Package evaluator contains the adapters that invoke the two judgment
// evaluators, the deterministic rule-script sandbox and the probabilistic
// inference service, and normalize their raw outputs into a common
// decision/confidence shape.
//
// Both adapters recover every evaluator-level failure locally: they report
// failures in their outcome values and never return an error to the caller.
// Inference calls always go through a circuit breaker.
package evaluator

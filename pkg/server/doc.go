// Package server provides the HTTP API for the judgment engine: judgment
// submission, ruleset administration, cache control, breaker status and
// operational endpoints.
package server

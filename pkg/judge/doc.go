// Package judge implements the hybrid judgment engine: it combines the
// rule evaluator and the inference evaluator under one of seven policies
// and produces a decision with a confidence score, an explanation and an
// evidence trail.
//
// Results with high confidence are cached by input fingerprint so repeated
// readings short-circuit evaluation entirely.
package judge

// Saturn is a hybrid judgment engine for sensor readings.
//
// It decides OK, WARNING, CRITICAL or UNKNOWN for each reading by combining
// a deterministic rule evaluator with an LLM evaluator under one of seven
// judgment policies, protected by circuit breakers and fronted by a
// fingerprint-keyed result cache.
//
// Usage:
//
//	# Start the server with default configuration
//	saturn run
//
//	# Start with a custom configuration file
//	saturn run --config /path/to/config.yaml
//
//	# Check a configuration file without starting
//	saturn validate --config /path/to/config.yaml
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}

// Package ruleset manages the rule scripts a tenant registers for
// judgment. Rulesets are versioned and resolved per tenant; backends
// include a SQLite store and a directory of YAML files with hot reload.
package ruleset

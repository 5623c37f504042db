// Package config defines the Saturn configuration model. Configuration is
// loaded from a YAML file, filled with defaults, overridden by SATURN_*
// environment variables and validated before any component starts.
package config

// Package cli provides small helpers for the saturn command line: result
// formatting (text or JSON) and signal-aware contexts for one-shot client
// commands.
package cli

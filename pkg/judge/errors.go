package judge

import "fmt"

// UnknownPolicyError reports a policy name outside the closed set. The
// engine refuses to guess: a typo silently mapped onto a default would
// change judgment semantics without anyone noticing.
type UnknownPolicyError struct {
	Policy string
}

func (e *UnknownPolicyError) Error() string {
	return fmt.Sprintf("unknown judgment policy %q", e.Policy)
}

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

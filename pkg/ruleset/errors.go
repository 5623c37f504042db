package ruleset

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates the ruleset does not exist for the tenant.
type NotFoundError struct {
	TenantID  uuid.UUID
	RulesetID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ruleset %s not found for tenant %s", e.RulesetID, e.TenantID)
}

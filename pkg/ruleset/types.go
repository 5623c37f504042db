package ruleset

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ruleset is one versioned rule script owned by a tenant.
type Ruleset struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	TenantID  uuid.UUID `json:"tenant_id" yaml:"tenant_id"`
	Name      string    `json:"name" yaml:"name"`
	Version   int       `json:"version" yaml:"version"`
	Script    string    `json:"script" yaml:"script"`
	Active    bool      `json:"active" yaml:"active"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Resolver looks up a ruleset for evaluation. Resolution is tenant-scoped:
// a ruleset is only visible to the tenant that owns it.
type Resolver interface {
	Resolve(ctx context.Context, tenantID, rulesetID uuid.UUID) (*Ruleset, error)
}

// Store is a Resolver that also supports administration.
type Store interface {
	Resolver
	Save(ctx context.Context, rs *Ruleset) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Ruleset, error)
	Close() error
}

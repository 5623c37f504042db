package ruleset

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

var (
	tenantA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	tenantB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	rsID    = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func sample(id, tenant uuid.UUID, name string) *Ruleset {
	return &Ruleset{
		ID:       id,
		TenantID: tenant,
		Name:     name,
		Version:  1,
		Script:   "checks:\n  - name: temp\n    field: temperature\n    op: lte\n    value: 80",
		Active:   true,
	}
}

func TestMemoryStore_SaveResolve(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Save(ctx, sample(rsID, tenantA, "press-monitoring")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Resolve(ctx, tenantA, rsID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Name != "press-monitoring" || got.Version != 1 || !got.Active {
		t.Errorf("ruleset = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not defaulted on save")
	}
}

func TestMemoryStore_ResolveNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Resolve(context.Background(), tenantA, rsID)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if nf.RulesetID != rsID {
		t.Errorf("NotFoundError.RulesetID = %v", nf.RulesetID)
	}
}

func TestMemoryStore_TenantScoping(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Save(ctx, sample(rsID, tenantA, "press-monitoring"))

	_, err := s.Resolve(ctx, tenantB, rsID)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("cross-tenant resolve error = %v, want *NotFoundError", err)
	}
}

func TestMemoryStore_ListByTenant(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Save(ctx, sample(uuid.New(), tenantA, "one"))
	s.Save(ctx, sample(uuid.New(), tenantA, "two"))
	s.Save(ctx, sample(uuid.New(), tenantB, "other"))

	list, err := s.ListByTenant(ctx, tenantA)
	if err != nil {
		t.Fatalf("ListByTenant() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len(list) = %d, want 2", len(list))
	}
}

func TestMemoryStore_ReplaceAll(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Save(ctx, sample(rsID, tenantA, "stale"))

	fresh := uuid.New()
	s.ReplaceAll([]*Ruleset{sample(fresh, tenantA, "fresh")})

	if _, err := s.Resolve(ctx, tenantA, rsID); err == nil {
		t.Error("stale ruleset survived ReplaceAll")
	}
	if _, err := s.Resolve(ctx, tenantA, fresh); err != nil {
		t.Errorf("fresh ruleset missing after ReplaceAll: %v", err)
	}
}

func TestMemoryStore_CopyOnRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Save(ctx, sample(rsID, tenantA, "press-monitoring"))

	got, _ := s.Resolve(ctx, tenantA, rsID)
	got.Name = "mutated"

	again, _ := s.Resolve(ctx, tenantA, rsID)
	if again.Name != "press-monitoring" {
		t.Errorf("Name = %q, caller mutation leaked into the store", again.Name)
	}
}

package ruleset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS rulesets (
	id         TEXT PRIMARY KEY,
	tenant_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	script     TEXT NOT NULL,
	active     INTEGER NOT NULL DEFAULT 1,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rulesets_tenant ON rulesets(tenant_id);
`

// SQLiteStore persists rulesets in a SQLite database. It is the default
// backend for single-instance deployments; WAL mode keeps reads cheap while
// administrative writes are in flight.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the ruleset database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("ruleset db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ruleset database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ruleset schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Resolve(ctx context.Context, tenantID, rulesetID uuid.UUID) (*Ruleset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, version, script, active, updated_at
		 FROM rulesets WHERE id = ? AND tenant_id = ?`,
		rulesetID.String(), tenantID.String())

	rs, err := scanRuleset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{TenantID: tenantID, RulesetID: rulesetID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ruleset: %w", err)
	}
	return rs, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rs *Ruleset) error {
	updatedAt := rs.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rulesets (id, tenant_id, name, version, script, active, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			script = excluded.script,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		rs.ID.String(), rs.TenantID.String(), rs.Name, rs.Version, rs.Script,
		boolToInt(rs.Active), updatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save ruleset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Ruleset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, version, script, active, updated_at
		 FROM rulesets WHERE tenant_id = ? ORDER BY name, version`,
		tenantID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list rulesets: %w", err)
	}
	defer rows.Close()

	var out []*Ruleset
	for rows.Next() {
		rs, err := scanRuleset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ruleset: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRuleset(row rowScanner) (*Ruleset, error) {
	var (
		rs                  Ruleset
		id, tenant, updated string
		active              int
	)
	if err := row.Scan(&id, &tenant, &rs.Name, &rs.Version, &rs.Script, &active, &updated); err != nil {
		return nil, err
	}

	var err error
	if rs.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid ruleset id %q: %w", id, err)
	}
	if rs.TenantID, err = uuid.Parse(tenant); err != nil {
		return nil, fmt.Errorf("invalid tenant id %q: %w", tenant, err)
	}
	if rs.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updated, err)
	}
	rs.Active = active != 0
	return &rs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

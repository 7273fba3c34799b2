package audit

import (
	"context"
	"database/sql"
	"fmt"

	"classroom-api/pkg/utils"
)

// PostgresRepo appends events to audit_events.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const createAuditEvents = `
CREATE TABLE IF NOT EXISTS audit_events (
  id          UUID PRIMARY KEY,
  type        TEXT NOT NULL,
  actor_email TEXT NOT NULL,
  ip_address  TEXT NOT NULL DEFAULT '',
  collection  TEXT NOT NULL,
  target_id   TEXT NOT NULL,
  role        TEXT NOT NULL DEFAULT '',
  message     TEXT NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL
)`

const indexAuditEvents = `
CREATE INDEX IF NOT EXISTS audit_events_target_idx ON audit_events (collection, target_id, created_at)`

// Migrate creates the table and index if they are missing.
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createAuditEvents); err != nil {
			return fmt.Errorf("audit: create table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, indexAuditEvents); err != nil {
			return fmt.Errorf("audit: create index: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, actor_email, ip_address, collection, target_id, role, message, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.ActorEmail,
		e.IPAddress,
		e.Collection,
		e.TargetID,
		e.Role,
		e.Message,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
// Returns nil if the URL is empty (PostgreSQL not configured; memory stores
// are used instead).
func Open(url string) (*sql.DB, error) {
	if url == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// schema is applied at startup. Secondary lookups (holder, status, role) are
// served by the indexes below; they are maintained by the same transaction as
// the primary write, never recomputed by scans.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	identity      TEXT PRIMARY KEY,
	display_name  TEXT NOT NULL,
	commitment    BYTEA NOT NULL,
	role          INT NOT NULL,
	registered_by TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL,
	seq           BIGSERIAL
);
CREATE INDEX IF NOT EXISTS accounts_role_idx ON accounts (role, seq);

CREATE TABLE IF NOT EXISTS certificates (
	id              TEXT PRIMARY KEY,
	holder_identity TEXT NOT NULL REFERENCES accounts (identity),
	issuer_identity TEXT NOT NULL,
	title           TEXT NOT NULL,
	issued_at       BIGINT NOT NULL,
	artifact_ref    TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	reviewed_by     TEXT NOT NULL DEFAULT '',
	reviewed_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS certificates_holder_idx ON certificates (holder_identity, issued_at DESC, id);
CREATE INDEX IF NOT EXISTS certificates_status_idx ON certificates (status, issued_at DESC, id);

CREATE TABLE IF NOT EXISTS audit_events (
	seq        BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	actor      TEXT NOT NULL,
	subject    TEXT NOT NULL,
	action     TEXT NOT NULL,
	decision   TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject, seq);
`

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

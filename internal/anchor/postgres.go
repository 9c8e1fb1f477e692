// Package anchor provides durable mirrors of the global receipt anchor. The
// in-memory anchor owned by the ledger store is always canonical; a mirror is
// an external collaborator that keeps an insert-only copy for audit trails
// that must survive the process.
package anchor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"reciprocity/internal/consent"
	id "reciprocity/pkg/domain"
)

// Schema is the table the postgres mirror writes to. Rows are only ever
// inserted; the unique receipt constraint makes replays idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS receipt_anchor (
	id         UUID PRIMARY KEY,
	receipt    TEXT NOT NULL UNIQUE,
	user_id    TEXT NOT NULL,
	anchored_at TIMESTAMPTZ NOT NULL
)`

// Postgres mirrors anchor entries into a postgres table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a postgres anchor mirror over an open connection.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the mirror table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure anchor schema: %w", err)
	}
	return nil
}

// Append inserts one anchor entry. Duplicate receipts are ignored so a
// replayed operation log cannot fork the mirror.
func (p *Postgres) Append(ctx context.Context, userID id.UserID, entry consent.AnchorEntry) error {
	query := `
		INSERT INTO receipt_anchor (id, receipt, user_id, anchored_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (receipt) DO NOTHING
	`
	_, err := p.db.ExecContext(ctx, query,
		uuid.New(),
		entry.Receipt,
		userID.String(),
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert anchor entry: %w", err)
	}
	return nil
}

// List returns all mirrored entries in anchoring order.
func (p *Postgres) List(ctx context.Context) ([]consent.AnchorEntry, error) {
	query := `
		SELECT receipt, anchored_at
		FROM receipt_anchor
		ORDER BY anchored_at, receipt
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query anchor entries: %w", err)
	}
	defer rows.Close()

	var entries []consent.AnchorEntry
	for rows.Next() {
		var entry consent.AnchorEntry
		if err := rows.Scan(&entry.Receipt, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan anchor entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anchor entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of mirrored entries.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipt_anchor`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count anchor entries: %w", err)
	}
	return count, nil
}

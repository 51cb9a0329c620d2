package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ekomarov/drafter/internal/core/domain"
)

type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Get returns (nil, nil) for a node with no stored entry. The implicit
// empty-draft default is applied by the caller, not here.
func (r *ContentRepository) Get(ctx context.Context, nodeID string) (*domain.ContentEntry, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT node_id, body, status, updated_at
FROM node_content
WHERE node_id = $1
`, nodeID)

	var e domain.ContentEntry
	var status string
	if err := row.Scan(&e.NodeID, &e.Body, &status, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan content: %w", err)
	}
	e.Status = domain.ContentStatus(status)
	return &e, nil
}

func (r *ContentRepository) ListByOutline(ctx context.Context, outlineID string) (map[string]domain.ContentEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.node_id, c.body, c.status, c.updated_at
FROM node_content c
JOIN outline_nodes n ON n.id = c.node_id
WHERE n.outline_id = $1
`, outlineID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ContentEntry)
	for rows.Next() {
		var e domain.ContentEntry
		var status string
		if err := rows.Scan(&e.NodeID, &e.Body, &status, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		e.Status = domain.ContentStatus(status)
		out[e.NodeID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return out, nil
}

func (r *ContentRepository) Upsert(ctx context.Context, entry domain.ContentEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO node_content (node_id, body, status, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (node_id) DO UPDATE SET
	body = EXCLUDED.body,
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at
`, entry.NodeID, entry.Body, string(entry.Status), entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert content: %w", err)
	}
	return nil
}

func (r *ContentRepository) Remove(ctx context.Context, nodeID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM node_content WHERE node_id = $1`, nodeID); err != nil {
		return fmt.Errorf("remove content: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ekomarov/drafter/internal/core/domain"
)

type OutlineRepository struct {
	db *sql.DB
}

func NewOutlineRepository(db *sql.DB) *OutlineRepository {
	return &OutlineRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *OutlineRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS outlines (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outline_nodes (
	id TEXT PRIMARY KEY,
	outline_id TEXT NOT NULL REFERENCES outlines(id) ON DELETE CASCADE,
	parent_id TEXT,
	title TEXT NOT NULL,
	level INT NOT NULL,
	order_no TEXT NOT NULL,
	position INT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outline_nodes_outline ON outline_nodes(outline_id);

CREATE TABLE IF NOT EXISTS node_content (
	node_id TEXT PRIMARY KEY REFERENCES outline_nodes(id) ON DELETE CASCADE,
	body TEXT NOT NULL,
	status TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL UNIQUE,
	mime_type TEXT NOT NULL,
	category TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *OutlineRepository) CreateOutline(ctx context.Context, o *domain.Outline) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO outlines (id, name, created_at, updated_at)
VALUES ($1,$2,$3,$4)
`, o.ID, o.Name, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert outline: %w", err)
	}
	return nil
}

func (r *OutlineRepository) GetOutline(ctx context.Context, id string) (*domain.Outline, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, created_at, updated_at
FROM outlines
WHERE id = $1
`, id)

	var o domain.Outline
	if err := row.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrOutlineNotFound, "get outline", fmt.Errorf("outline %s", id))
		}
		return nil, fmt.Errorf("scan outline: %w", err)
	}
	return &o, nil
}

func (r *OutlineRepository) ListOutlines(ctx context.Context) ([]domain.Outline, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, created_at, updated_at
FROM outlines
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list outlines: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Outline, 0)
	for rows.Next() {
		var o domain.Outline
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan outline: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outlines: %w", err)
	}
	return out, nil
}

func (r *OutlineRepository) DeleteOutline(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM outlines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete outline rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrOutlineNotFound, "delete outline", fmt.Errorf("outline %s", id))
	}
	return nil
}

func (r *OutlineRepository) ListNodes(ctx context.Context, outlineID string) ([]domain.OutlineNode, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, outline_id, COALESCE(parent_id, ''), title, level, order_no, position
FROM outline_nodes
WHERE outline_id = $1
ORDER BY level, position
`, outlineID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.OutlineNode, 0)
	for rows.Next() {
		var n domain.OutlineNode
		if err := rows.Scan(&n.ID, &n.OutlineID, &n.ParentID, &n.Title, &n.Level, &n.OrderNo, &n.Position); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return out, nil
}

func (r *OutlineRepository) FindNodeOutline(ctx context.Context, nodeID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT outline_id FROM outline_nodes WHERE id = $1`, nodeID)

	var outlineID string
	if err := row.Scan(&outlineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.WrapError(domain.ErrNodeNotFound, "find node outline", fmt.Errorf("node %s", nodeID))
		}
		return "", fmt.Errorf("scan node outline: %w", err)
	}
	return outlineID, nil
}

// SaveTree applies one structural mutation atomically: removed subtrees
// go first (content rows cascade), then every survivor is upserted with
// its recomputed level, numbering and position.
func (r *OutlineRepository) SaveTree(ctx context.Context, outlineID string, nodes []domain.OutlineNode, removedIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tree tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, id := range removedIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM outline_nodes WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete node %s: %w", id, err)
		}
	}

	for _, n := range nodes {
		parent := sql.NullString{String: n.ParentID, Valid: n.ParentID != ""}
		_, err := tx.ExecContext(ctx, `
INSERT INTO outline_nodes (id, outline_id, parent_id, title, level, order_no, position)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
	parent_id = EXCLUDED.parent_id,
	title = EXCLUDED.title,
	level = EXCLUDED.level,
	order_no = EXCLUDED.order_no,
	position = EXCLUDED.position
`, n.ID, n.OutlineID, parent, n.Title, n.Level, n.OrderNo, n.Position)
		if err != nil {
			return fmt.Errorf("upsert node %s: %w", n.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE outlines SET updated_at = $2 WHERE id = $1`, outlineID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch outline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tree tx: %w", err)
	}
	return nil
}

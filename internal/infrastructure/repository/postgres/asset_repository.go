package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ekomarov/drafter/internal/core/domain"
)

type AssetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) CreateAsset(ctx context.Context, a *domain.Asset) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO assets (id, filename, mime_type, category, storage_path, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, a.ID, a.Filename, a.MimeType, a.Category, a.StoragePath, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (r *AssetRepository) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, mime_type, category, storage_path, created_at
FROM assets
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Asset, 0)
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Filename, &a.MimeType, &a.Category, &a.StoragePath, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return out, nil
}

func (r *AssetRepository) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, category, storage_path, created_at
FROM assets
WHERE id = $1
`, id)

	var a domain.Asset
	if err := row.Scan(&a.ID, &a.Filename, &a.MimeType, &a.Category, &a.StoragePath, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "get asset", fmt.Errorf("asset %s", id))
		}
		return nil, fmt.Errorf("scan asset: %w", err)
	}
	return &a, nil
}

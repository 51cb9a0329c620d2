package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/ports"
)

// AssetIngestUseCase stores uploaded reference assets. Filenames already
// present in the library are skipped before any bytes are written, and
// the report tells the caller exactly which files went where.
type AssetIngestUseCase struct {
	repo    ports.AssetRepository
	storage ports.ObjectStorage
	logger  *slog.Logger
}

func NewAssetIngestUseCase(
	repo ports.AssetRepository,
	storage ports.ObjectStorage,
	logger *slog.Logger,
) *AssetIngestUseCase {
	return &AssetIngestUseCase{
		repo:    repo,
		storage: storage,
		logger:  logger,
	}
}

func (uc *AssetIngestUseCase) Upload(ctx context.Context, files []domain.UploadFile, category string) (*domain.UploadReport, error) {
	existing, err := uc.repo.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, a := range existing {
		taken[a.Filename] = true
	}

	report := &domain.UploadReport{Accepted: []domain.Asset{}, Skipped: []string{}}
	for _, f := range files {
		if taken[f.Filename] {
			report.Skipped = append(report.Skipped, f.Filename)
			continue
		}

		id := uuid.NewString()
		storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(f.Filename))
		if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(f.Data)); err != nil {
			return nil, fmt.Errorf("save %s to object storage: %w", f.Filename, err)
		}

		asset := domain.Asset{
			ID:          id,
			Filename:    f.Filename,
			MimeType:    f.MimeType,
			Category:    category,
			StoragePath: storageKey,
			CreatedAt:   time.Now().UTC(),
		}
		if err := uc.repo.CreateAsset(ctx, &asset); err != nil {
			return nil, fmt.Errorf("create asset metadata: %w", err)
		}

		taken[f.Filename] = true
		report.Accepted = append(report.Accepted, asset)
	}

	uc.logger.Info("assets uploaded", "accepted", len(report.Accepted), "skipped", len(report.Skipped), "category", category)
	return report, nil
}

func (uc *AssetIngestUseCase) List(ctx context.Context) ([]domain.Asset, error) {
	assets, err := uc.repo.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "asset.bin"
	}
	return base
}

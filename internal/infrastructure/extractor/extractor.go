package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/ports"
)

// Extractor pulls requirement text out of stored assets so it can be fed
// to the generation collaborator. PDF assets go through the pdf reader;
// everything else is treated as plain text.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, asset *domain.Asset) (string, error) {
	reader, err := e.storage.Open(ctx, asset.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open asset: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read asset: %w", err)
	}

	if isPDF(asset, raw) {
		return extractPDFText(raw)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract requirements",
			fmt.Errorf("unsupported binary format: %s", asset.Filename))
	}
	return strings.TrimSpace(string(raw)), nil
}

func isPDF(asset *domain.Asset, raw []byte) bool {
	if asset.MimeType == "application/pdf" {
		return true
	}
	if strings.HasSuffix(strings.ToLower(asset.Filename), ".pdf") {
		return true
	}
	return len(raw) >= 5 && string(raw[:5]) == "%PDF-"
}

package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/ekomarov/drafter/internal/core/domain"
)

func TestUploadStoresBytesAndMetadata(t *testing.T) {
	repo := &assetRepoFake{}
	storage := newStorageFake()
	uc := NewAssetIngestUseCase(repo, storage, testLogger())

	report, err := uc.Upload(context.Background(), []domain.UploadFile{
		{Filename: "requirements.pdf", MimeType: "application/pdf", Data: []byte("pdf-bytes")},
	}, "requirements")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(report.Accepted) != 1 || len(report.Skipped) != 0 {
		t.Fatalf("expected one accepted file, got %+v", report)
	}

	asset := report.Accepted[0]
	if asset.Category != "requirements" || asset.Filename != "requirements.pdf" {
		t.Fatalf("unexpected asset metadata %+v", asset)
	}
	if !strings.HasSuffix(asset.StoragePath, "_requirements.pdf") {
		t.Fatalf("expected sanitized storage key, got %q", asset.StoragePath)
	}
	if got := storage.saved[asset.StoragePath]; string(got) != "pdf-bytes" {
		t.Fatalf("expected bytes stored under %q, got %q", asset.StoragePath, got)
	}
}

func TestUploadSkipsDuplicateFilenames(t *testing.T) {
	repo := &assetRepoFake{assets: []domain.Asset{{ID: "a1", Filename: "reqs.pdf"}}}
	storage := newStorageFake()
	uc := NewAssetIngestUseCase(repo, storage, testLogger())

	report, err := uc.Upload(context.Background(), []domain.UploadFile{
		{Filename: "reqs.pdf", Data: []byte("dup")},
		{Filename: "style.docx", Data: []byte("new")},
	}, "requirements")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "reqs.pdf" {
		t.Fatalf("expected reqs.pdf skipped, got %v", report.Skipped)
	}
	if len(report.Accepted) != 1 || report.Accepted[0].Filename != "style.docx" {
		t.Fatalf("expected style.docx accepted, got %+v", report.Accepted)
	}
	if len(storage.saved) != 1 {
		t.Fatalf("expected no bytes written for the duplicate, got %d objects", len(storage.saved))
	}
}

func TestUploadDedupsWithinOneBatch(t *testing.T) {
	uc := NewAssetIngestUseCase(&assetRepoFake{}, newStorageFake(), testLogger())

	report, err := uc.Upload(context.Background(), []domain.UploadFile{
		{Filename: "reqs.pdf", Data: []byte("first")},
		{Filename: "reqs.pdf", Data: []byte("second")},
	}, "requirements")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(report.Accepted) != 1 || len(report.Skipped) != 1 {
		t.Fatalf("expected second copy skipped, got %+v", report)
	}
}

func TestUploadSanitizesHostileFilename(t *testing.T) {
	storage := newStorageFake()
	uc := NewAssetIngestUseCase(&assetRepoFake{}, storage, testLogger())

	report, err := uc.Upload(context.Background(), []domain.UploadFile{
		{Filename: "../../etc/some notes?.txt", Data: []byte("x")},
	}, "notes")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	key := report.Accepted[0].StoragePath
	if strings.Contains(key, "/") || strings.Contains(key, " ") || strings.Contains(key, "?") {
		t.Fatalf("expected sanitized key, got %q", key)
	}
}

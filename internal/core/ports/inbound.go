package ports

import (
	"context"
	"io"

	"github.com/ekomarov/drafter/internal/core/domain"
)

// OutlineService is the inbound contract for outline and node structure
// operations.
type OutlineService interface {
	CreateOutline(ctx context.Context, name string) (*domain.Outline, error)
	ListOutlines(ctx context.Context) ([]domain.Outline, error)
	GetDetail(ctx context.Context, outlineID string) (*domain.OutlineDetail, error)
	DeleteOutline(ctx context.Context, outlineID string) error
	AddNode(ctx context.Context, outlineID, parentID, title string) (*domain.OutlineNode, error)
	RenameNode(ctx context.Context, nodeID, title string) (*domain.OutlineNode, error)
	DeleteNode(ctx context.Context, nodeID string) ([]string, error)
	MoveNode(ctx context.Context, nodeID, newParentID string, position int) (*domain.OutlineNode, error)
	ImportMarkdown(ctx context.Context, name string, source io.Reader) (*domain.OutlineDetail, error)
}

// ContentService is the inbound contract for per-node content.
type ContentService interface {
	GetContent(ctx context.Context, nodeID string) (*domain.ContentEntry, error)
	PutContent(ctx context.Context, nodeID, body string, status domain.ContentStatus) (*domain.ContentEntry, error)
	ResetContent(ctx context.Context, nodeID string) error
	GenerateNode(ctx context.Context, nodeID, requirements string, assetIDs []string) (*domain.ContentEntry, error)
}

// BatchService enqueues and executes whole-outline generation.
type BatchService interface {
	EnqueueOutline(ctx context.Context, outlineID string) error
	GenerateOutline(ctx context.Context, outlineID string) error
}

// RenderService merges tree and content into the flattened document view.
type RenderService interface {
	Render(ctx context.Context, outlineID string) (*domain.RenderedDocument, error)
	ExportTOC(ctx context.Context, outlineID string) ([]byte, error)
	Styles(ctx context.Context, template string) ([]domain.StyleHint, error)
}

// AssetIngestor is the inbound contract for asset upload with filename
// dedup.
type AssetIngestor interface {
	Upload(ctx context.Context, files []domain.UploadFile, category string) (*domain.UploadReport, error)
	List(ctx context.Context) ([]domain.Asset, error)
}

package ports

import (
	"context"
	"io"

	"github.com/ekomarov/drafter/internal/core/domain"
)

// OutlineRepository persists outline metadata and node forests.
// SaveTree applies one structural mutation atomically: it upserts the
// surviving nodes and deletes removed ones (content rows cascade with
// them) in a single transaction.
type OutlineRepository interface {
	CreateOutline(ctx context.Context, o *domain.Outline) error
	GetOutline(ctx context.Context, id string) (*domain.Outline, error)
	ListOutlines(ctx context.Context) ([]domain.Outline, error)
	DeleteOutline(ctx context.Context, id string) error
	ListNodes(ctx context.Context, outlineID string) ([]domain.OutlineNode, error)
	FindNodeOutline(ctx context.Context, nodeID string) (string, error)
	SaveTree(ctx context.Context, outlineID string, nodes []domain.OutlineNode, removedIDs []string) error
}

// ContentRepository persists body/status per node id. Get returns
// (nil, nil) for a node without an explicit entry; the implicit
// empty-draft default belongs to the caller.
type ContentRepository interface {
	Get(ctx context.Context, nodeID string) (*domain.ContentEntry, error)
	ListByOutline(ctx context.Context, outlineID string) (map[string]domain.ContentEntry, error)
	Upsert(ctx context.Context, entry domain.ContentEntry) error
	Remove(ctx context.Context, nodeID string) error
}

// AssetRepository persists uploaded asset metadata.
type AssetRepository interface {
	CreateAsset(ctx context.Context, a *domain.Asset) error
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}

// ObjectStorage stores raw asset bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ContentGenerator is the external content-generation collaborator.
type ContentGenerator interface {
	GenerateSection(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// StyleProvider is the external table-of-contents style-hint collaborator.
type StyleProvider interface {
	Styles(ctx context.Context, template string) ([]domain.StyleHint, error)
}

// MessageQueue publishes/consumes batch generation jobs.
type MessageQueue interface {
	PublishOutlineGeneration(ctx context.Context, outlineID string) error
	SubscribeOutlineGeneration(ctx context.Context, handler func(context.Context, string) error) error
}

// RequirementExtractor pulls plain requirement text out of a stored asset.
type RequirementExtractor interface {
	Extract(ctx context.Context, asset *domain.Asset) (string, error)
}

// TraceGraph records which assets fed which generated section.
type TraceGraph interface {
	RecordGeneration(ctx context.Context, node domain.OutlineNode, assetIDs []string) error
}

// HTMLSanitizer strips unsafe markup from rich-text bodies before they
// are stored.
type HTMLSanitizer interface {
	Sanitize(html string) string
}

// TOCExporter renders a numbered table of contents into a downloadable
// spreadsheet.
type TOCExporter interface {
	ExportXLSX(outline domain.Outline, entries []domain.TOCEntry, styles []domain.StyleHint) ([]byte, error)
}

// OutlineImporter parses a markdown document into an ordered list of
// sections suitable for building an outline.
type OutlineImporter interface {
	Parse(source io.Reader) ([]domain.ImportedSection, error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/ports"
)

// ContentUseCase implements per-node content reads, writes and single
// section generation. A node with no stored entry reads as an empty
// draft; writes sanitize the body before it is persisted.
type ContentUseCase struct {
	outlines  ports.OutlineRepository
	content   ports.ContentRepository
	assets    ports.AssetRepository
	generator ports.ContentGenerator
	extractor ports.RequirementExtractor
	trace     ports.TraceGraph
	sanitizer ports.HTMLSanitizer
	locks     *OutlineLocks
	logger    *slog.Logger
}

func NewContentUseCase(
	outlines ports.OutlineRepository,
	content ports.ContentRepository,
	assets ports.AssetRepository,
	generator ports.ContentGenerator,
	extractor ports.RequirementExtractor,
	trace ports.TraceGraph,
	sanitizer ports.HTMLSanitizer,
	locks *OutlineLocks,
	logger *slog.Logger,
) *ContentUseCase {
	return &ContentUseCase{
		outlines:  outlines,
		content:   content,
		assets:    assets,
		generator: generator,
		extractor: extractor,
		trace:     trace,
		sanitizer: sanitizer,
		locks:     locks,
		logger:    logger,
	}
}

func (uc *ContentUseCase) GetContent(ctx context.Context, nodeID string) (*domain.ContentEntry, error) {
	if _, err := uc.outlines.FindNodeOutline(ctx, nodeID); err != nil {
		return nil, fmt.Errorf("resolve node outline: %w", err)
	}

	entry, err := uc.content.Get(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}
	if entry == nil {
		def := domain.EmptyContentEntry(nodeID)
		return &def, nil
	}
	return entry, nil
}

func (uc *ContentUseCase) PutContent(ctx context.Context, nodeID, body string, status domain.ContentStatus) (*domain.ContentEntry, error) {
	if !domain.ValidContentStatus(status) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "put content", fmt.Errorf("unknown status %q", status))
	}

	outlineID, err := uc.outlines.FindNodeOutline(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("resolve node outline: %w", err)
	}

	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	entry := domain.ContentEntry{
		NodeID:    nodeID,
		Body:      uc.sanitizer.Sanitize(body),
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.content.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}
	return &entry, nil
}

// ResetContent returns the node to the implicit empty-draft state.
func (uc *ContentUseCase) ResetContent(ctx context.Context, nodeID string) error {
	outlineID, err := uc.outlines.FindNodeOutline(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("resolve node outline: %w", err)
	}

	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	if err := uc.content.Remove(ctx, nodeID); err != nil {
		return fmt.Errorf("remove content: %w", err)
	}
	return nil
}

// GenerateNode asks the generation collaborator for a body for one node.
// Requirements passed by the caller are extended with text extracted
// from the referenced assets. On success the body replaces the entry
// with status generated; on failure an error placeholder is prepended to
// the existing body, the entry drops back to draft, and the wrapped
// failure is returned.
func (uc *ContentUseCase) GenerateNode(ctx context.Context, nodeID, requirements string, assetIDs []string) (*domain.ContentEntry, error) {
	outlineID, err := uc.outlines.FindNodeOutline(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("resolve node outline: %w", err)
	}

	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	node, err := uc.findNode(ctx, outlineID, nodeID)
	if err != nil {
		return nil, err
	}

	reqText, err := uc.collectRequirements(ctx, requirements, assetIDs)
	if err != nil {
		return nil, err
	}

	body, genErr := uc.generator.GenerateSection(ctx, domain.GenerationRequest{
		Title:        node.Title,
		Level:        node.Level,
		Requirements: reqText,
	})
	if genErr != nil {
		if markErr := uc.markFailed(ctx, nodeID, genErr); markErr != nil {
			return nil, fmt.Errorf("%w; mark failed: %v", genErr, markErr)
		}
		return nil, genErr
	}
	if strings.TrimSpace(body) == "" {
		genErr = domain.WrapError(domain.ErrGenerationFailed, "generate section", errors.New("empty generated body"))
		if markErr := uc.markFailed(ctx, nodeID, genErr); markErr != nil {
			return nil, fmt.Errorf("%w; mark failed: %v", genErr, markErr)
		}
		return nil, genErr
	}

	entry := domain.ContentEntry{
		NodeID:    nodeID,
		Body:      uc.sanitizer.Sanitize(body),
		Status:    domain.StatusGenerated,
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.content.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("store generated content: %w", err)
	}

	if err := uc.trace.RecordGeneration(ctx, node, assetIDs); err != nil {
		// The generated body is already stored; a trace gap is logged,
		// not surfaced.
		uc.logger.Warn("trace record failed", "node_id", nodeID, "error", err)
	}

	uc.logger.Info("section generated", "outline_id", outlineID, "node_id", nodeID, "order_no", node.OrderNo)
	return &entry, nil
}

func (uc *ContentUseCase) collectRequirements(ctx context.Context, requirements string, assetIDs []string) (string, error) {
	parts := make([]string, 0, len(assetIDs)+1)
	if strings.TrimSpace(requirements) != "" {
		parts = append(parts, requirements)
	}
	for _, id := range assetIDs {
		asset, err := uc.assets.GetAsset(ctx, id)
		if err != nil {
			return "", fmt.Errorf("fetch asset %s: %w", id, err)
		}
		text, err := uc.extractor.Extract(ctx, asset)
		if err != nil {
			return "", fmt.Errorf("extract requirements from %s: %w", asset.Filename, err)
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// markFailed prepends an inline error placeholder to whatever body the
// node already has and drops the entry back to draft. Prior content is
// never lost to a failed generation.
func (uc *ContentUseCase) markFailed(ctx context.Context, nodeID string, genErr error) error {
	prior, err := uc.content.Get(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("fetch prior content: %w", err)
	}
	body := generationErrorBody(genErr)
	if prior != nil && strings.TrimSpace(prior.Body) != "" {
		body = body + "\n\n" + prior.Body
	}
	entry := domain.ContentEntry{
		NodeID:    nodeID,
		Body:      body,
		Status:    domain.StatusDraft,
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.content.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("store failure placeholder: %w", err)
	}
	return nil
}

// generationErrorBody renders the failure placeholder. The error text
// echoes the collaborator response, so it is escaped before it lands
// inside stored markup.
func generationErrorBody(err error) string {
	return fmt.Sprintf("<p><em>Generation failed: %s</em></p>", html.EscapeString(err.Error()))
}

func (uc *ContentUseCase) findNode(ctx context.Context, outlineID, nodeID string) (domain.OutlineNode, error) {
	nodes, err := uc.outlines.ListNodes(ctx, outlineID)
	if err != nil {
		return domain.OutlineNode{}, fmt.Errorf("list nodes: %w", err)
	}
	for _, n := range nodes {
		if n.ID == nodeID {
			return n, nil
		}
	}
	return domain.OutlineNode{}, domain.WrapError(domain.ErrNodeNotFound, "generate section", fmt.Errorf("node %s", nodeID))
}

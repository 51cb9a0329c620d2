package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/outline"
	"github.com/ekomarov/drafter/internal/core/ports"
)

// OutlineUseCase implements outline and node structure operations. Every
// structural mutation loads the node forest, applies the change through
// the tree, and persists the renumbered result atomically.
type OutlineUseCase struct {
	repo      ports.OutlineRepository
	content   ports.ContentRepository
	importer  ports.OutlineImporter
	sanitizer ports.HTMLSanitizer
	locks     *OutlineLocks
	logger    *slog.Logger
}

func NewOutlineUseCase(
	repo ports.OutlineRepository,
	content ports.ContentRepository,
	importer ports.OutlineImporter,
	sanitizer ports.HTMLSanitizer,
	locks *OutlineLocks,
	logger *slog.Logger,
) *OutlineUseCase {
	return &OutlineUseCase{
		repo:      repo,
		content:   content,
		importer:  importer,
		sanitizer: sanitizer,
		locks:     locks,
		logger:    logger,
	}
}

func (uc *OutlineUseCase) CreateOutline(ctx context.Context, name string) (*domain.Outline, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create outline", errors.New("empty name"))
	}

	now := time.Now().UTC()
	o := &domain.Outline{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateOutline(ctx, o); err != nil {
		return nil, fmt.Errorf("create outline: %w", err)
	}

	uc.logger.Info("outline created", "outline_id", o.ID, "name", o.Name)
	return o, nil
}

func (uc *OutlineUseCase) ListOutlines(ctx context.Context) ([]domain.Outline, error) {
	outlines, err := uc.repo.ListOutlines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list outlines: %w", err)
	}
	return outlines, nil
}

// GetDetail returns the outline, its nodes in document order and the
// numbered table of contents derived from them.
func (uc *OutlineUseCase) GetDetail(ctx context.Context, outlineID string) (*domain.OutlineDetail, error) {
	o, tree, err := uc.loadTree(ctx, outlineID)
	if err != nil {
		return nil, err
	}
	return &domain.OutlineDetail{
		Outline: *o,
		Nodes:   tree.Flatten(),
		TOC:     outline.NumberHeadings(tree.Headings()),
	}, nil
}

func (uc *OutlineUseCase) DeleteOutline(ctx context.Context, outlineID string) error {
	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	if err := uc.repo.DeleteOutline(ctx, outlineID); err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	uc.logger.Info("outline deleted", "outline_id", outlineID)
	return nil
}

// AddNode appends a node as the last child of parentID (a new root when
// parentID is empty) and seeds it with an empty draft content entry.
func (uc *OutlineUseCase) AddNode(ctx context.Context, outlineID, parentID, title string) (*domain.OutlineNode, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add node", errors.New("empty title"))
	}

	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	_, tree, err := uc.loadTree(ctx, outlineID)
	if err != nil {
		return nil, err
	}

	added, err := tree.AddChild(parentID, title)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SaveTree(ctx, outlineID, tree.Flatten(), nil); err != nil {
		return nil, fmt.Errorf("save tree: %w", err)
	}
	if err := uc.content.Upsert(ctx, domain.EmptyContentEntry(added.ID)); err != nil {
		return nil, fmt.Errorf("seed content entry: %w", err)
	}

	node, _ := tree.Node(added.ID)
	uc.logger.Info("node added", "outline_id", outlineID, "node_id", node.ID, "order_no", node.OrderNo)
	return &node, nil
}

// RenameNode changes the title only. Numbering and children stay put.
func (uc *OutlineUseCase) RenameNode(ctx context.Context, nodeID, title string) (*domain.OutlineNode, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "rename node", errors.New("empty title"))
	}

	outlineID, err := uc.repo.FindNodeOutline(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("resolve node outline: %w", err)
	}

	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	_, tree, err := uc.loadTree(ctx, outlineID)
	if err != nil {
		return nil, err
	}
	if err := tree.Rename(nodeID, title); err != nil {
		return nil, err
	}
	if err := uc.repo.SaveTree(ctx, outlineID, tree.Flatten(), nil); err != nil {
		return nil, fmt.Errorf("save tree: %w", err)
	}

	node, _ := tree.Node(nodeID)
	return &node, nil
}

// DeleteNode removes the node with its whole subtree, cascades content
// deletion over exactly the removed ids, and renumbers the survivors.
// The removed ids are returned in document order.
func (uc *OutlineUseCase) DeleteNode(ctx context.Context, nodeID string) ([]string, error) {
	outlineID, err := uc.repo.FindNodeOutline(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("resolve node outline: %w", err)
	}

	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	_, tree, err := uc.loadTree(ctx, outlineID)
	if err != nil {
		return nil, err
	}
	removed, err := tree.Delete(nodeID)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SaveTree(ctx, outlineID, tree.Flatten(), removed); err != nil {
		return nil, fmt.Errorf("save tree: %w", err)
	}

	uc.logger.Info("node deleted", "outline_id", outlineID, "node_id", nodeID, "removed", len(removed))
	return removed, nil
}

// MoveNode reattaches a node (with its subtree) under newParentID at the
// given sibling position and renumbers the outline.
func (uc *OutlineUseCase) MoveNode(ctx context.Context, nodeID, newParentID string, position int) (*domain.OutlineNode, error) {
	outlineID, err := uc.repo.FindNodeOutline(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("resolve node outline: %w", err)
	}

	unlock := uc.locks.Lock(outlineID)
	defer unlock()

	_, tree, err := uc.loadTree(ctx, outlineID)
	if err != nil {
		return nil, err
	}
	if err := tree.Move(nodeID, newParentID, position); err != nil {
		return nil, err
	}
	if err := uc.repo.SaveTree(ctx, outlineID, tree.Flatten(), nil); err != nil {
		return nil, fmt.Errorf("save tree: %w", err)
	}

	node, _ := tree.Node(nodeID)
	return &node, nil
}

// ImportMarkdown creates a new outline from a markdown document: each
// heading becomes a node (levels clamped to at most one deeper than the
// previous heading) and the prose under it becomes the node's draft body.
func (uc *OutlineUseCase) ImportMarkdown(ctx context.Context, name string, source io.Reader) (*domain.OutlineDetail, error) {
	sections, err := uc.importer.Parse(source)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import markdown", err)
	}
	if len(sections) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import markdown", errors.New("no headings found"))
	}

	o, err := uc.CreateOutline(ctx, name)
	if err != nil {
		return nil, err
	}

	unlock := uc.locks.Lock(o.ID)
	defer unlock()

	tree := outline.New(o.ID)
	bodies := make(map[string]string, len(sections))

	// parents[d] is the id of the most recent node at depth d+1.
	var parents []string
	prev := 0
	for _, s := range sections {
		level := s.Level
		if level > prev+1 {
			level = prev + 1
		}
		if level < 1 {
			level = 1
		}
		parentID := ""
		if level > 1 {
			parentID = parents[level-2]
		}
		n, err := tree.AddChild(parentID, s.Title)
		if err != nil {
			return nil, err
		}
		parents = append(parents[:level-1], n.ID)
		prev = level
		if strings.TrimSpace(s.Body) != "" {
			// Imported bodies can carry raw HTML blocks, so they go
			// through the same sanitizer as manual writes.
			bodies[n.ID] = uc.sanitizer.Sanitize(s.Body)
		}
	}

	if err := uc.repo.SaveTree(ctx, o.ID, tree.Flatten(), nil); err != nil {
		return nil, fmt.Errorf("save imported tree: %w", err)
	}
	for _, n := range tree.Flatten() {
		entry := domain.EmptyContentEntry(n.ID)
		entry.Body = bodies[n.ID]
		if err := uc.content.Upsert(ctx, entry); err != nil {
			return nil, fmt.Errorf("seed imported content: %w", err)
		}
	}

	uc.logger.Info("outline imported", "outline_id", o.ID, "sections", len(sections))
	return &domain.OutlineDetail{
		Outline: *o,
		Nodes:   tree.Flatten(),
		TOC:     outline.NumberHeadings(tree.Headings()),
	}, nil
}

func (uc *OutlineUseCase) loadTree(ctx context.Context, outlineID string) (*domain.Outline, *outline.Tree, error) {
	o, err := uc.repo.GetOutline(ctx, outlineID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch outline: %w", err)
	}
	nodes, err := uc.repo.ListNodes(ctx, outlineID)
	if err != nil {
		return nil, nil, fmt.Errorf("list nodes: %w", err)
	}
	tree, err := outline.Build(outlineID, nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("build tree: %w", err)
	}
	return o, tree, nil
}

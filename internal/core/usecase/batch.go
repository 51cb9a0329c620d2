package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/outline"
	"github.com/ekomarov/drafter/internal/core/ports"
)

// BatchMetrics observes whole-outline generation runs. The worker wires
// the prometheus implementation; tests pass a no-op.
type BatchMetrics interface {
	ObserveSection(outcome string, duration time.Duration)
	ObserveBatch(outcome string, duration time.Duration)
}

// NopBatchMetrics satisfies BatchMetrics for processes that enqueue
// jobs but never execute batches themselves.
type NopBatchMetrics struct{}

func (NopBatchMetrics) ObserveSection(string, time.Duration) {}
func (NopBatchMetrics) ObserveBatch(string, time.Duration)   {}

// BatchUseCase runs whole-outline generation. EnqueueOutline publishes a
// job for the worker; GenerateOutline walks the nodes strictly in
// document order, one at a time, and halts on the first failure leaving
// later sections untouched.
type BatchUseCase struct {
	outlines ports.OutlineRepository
	content  ports.ContentRepository
	sections *ContentUseCase
	queue    ports.MessageQueue
	locks    *OutlineLocks
	metrics  BatchMetrics
	logger   *slog.Logger

	skipFinal bool
}

func NewBatchUseCase(
	outlines ports.OutlineRepository,
	content ports.ContentRepository,
	sections *ContentUseCase,
	queue ports.MessageQueue,
	locks *OutlineLocks,
	metrics BatchMetrics,
	logger *slog.Logger,
	skipFinal bool,
) *BatchUseCase {
	return &BatchUseCase{
		outlines:  outlines,
		content:   content,
		sections:  sections,
		queue:     queue,
		locks:     locks,
		metrics:   metrics,
		logger:    logger,
		skipFinal: skipFinal,
	}
}

func (uc *BatchUseCase) EnqueueOutline(ctx context.Context, outlineID string) error {
	if _, err := uc.outlines.GetOutline(ctx, outlineID); err != nil {
		return fmt.Errorf("fetch outline: %w", err)
	}
	if err := uc.queue.PublishOutlineGeneration(ctx, outlineID); err != nil {
		return domain.WrapError(domain.ErrTemporary, "enqueue outline generation", err)
	}
	uc.logger.Info("outline generation enqueued", "outline_id", outlineID)
	return nil
}

func (uc *BatchUseCase) GenerateOutline(ctx context.Context, outlineID string) error {
	start := time.Now()

	if _, err := uc.outlines.GetOutline(ctx, outlineID); err != nil {
		return fmt.Errorf("fetch outline: %w", err)
	}
	nodes, err := uc.outlines.ListNodes(ctx, outlineID)
	if err != nil {
		return fmt.Errorf("list nodes: %w", err)
	}
	tree, err := outline.Build(outlineID, nodes)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	ordered := tree.Flatten()

	existing, err := uc.content.ListByOutline(ctx, outlineID)
	if err != nil {
		return fmt.Errorf("list content: %w", err)
	}

	for _, n := range ordered {
		if uc.skipFinal {
			if entry, ok := existing[n.ID]; ok && entry.Status == domain.StatusFinal {
				uc.logger.Info("section skipped", "outline_id", outlineID, "node_id", n.ID, "order_no", n.OrderNo, "reason", "final")
				continue
			}
		}

		sectionStart := time.Now()
		if _, err := uc.sections.GenerateNode(ctx, n.ID, "", nil); err != nil {
			uc.metrics.ObserveSection("error", time.Since(sectionStart))
			uc.metrics.ObserveBatch("error", time.Since(start))
			uc.logger.Error("batch halted", "outline_id", outlineID, "node_id", n.ID, "order_no", n.OrderNo, "error", err)
			return fmt.Errorf("generate section %s: %w", n.OrderNo, err)
		}
		uc.metrics.ObserveSection("success", time.Since(sectionStart))
	}

	uc.metrics.ObserveBatch("success", time.Since(start))
	uc.logger.Info("outline generated", "outline_id", outlineID, "sections", len(ordered), "duration", time.Since(start))
	return nil
}

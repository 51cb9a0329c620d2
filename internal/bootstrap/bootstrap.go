package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ekomarov/drafter/internal/config"
	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/ports"
	"github.com/ekomarov/drafter/internal/core/usecase"
	"github.com/ekomarov/drafter/internal/infrastructure/export/xlsx"
	"github.com/ekomarov/drafter/internal/infrastructure/extractor"
	"github.com/ekomarov/drafter/internal/infrastructure/generation"
	"github.com/ekomarov/drafter/internal/infrastructure/graph/neo4j"
	"github.com/ekomarov/drafter/internal/infrastructure/importer/markdown"
	"github.com/ekomarov/drafter/internal/infrastructure/queue/nats"
	"github.com/ekomarov/drafter/internal/infrastructure/repository/postgres"
	"github.com/ekomarov/drafter/internal/infrastructure/resilience"
	"github.com/ekomarov/drafter/internal/infrastructure/sanitizer"
	"github.com/ekomarov/drafter/internal/infrastructure/storage/localfs"
)

// App wires configuration into the infrastructure adapters and use
// cases shared by the api, worker and mcp processes.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue

	Outlines ports.OutlineService
	Content  ports.ContentService
	Batch    *usecase.BatchUseCase
	Render   ports.RenderService
	Assets   ports.AssetIngestor

	closeFn func()
}

// Options adjusts wiring per process.
type Options struct {
	// BatchMetrics observes batch runs; the worker passes its
	// prometheus implementation, everything else gets a no-op.
	BatchMetrics usecase.BatchMetrics

	// QueueLagObserver receives the enqueue-to-delivery delay of each
	// consumed batch job.
	QueueLagObserver func(time.Duration)
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	outlineRepo := postgres.NewOutlineRepository(db)
	if err := outlineRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	contentRepo := postgres.NewContentRepository(db)
	assetRepo := postgres.NewAssetRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	policy := resilience.DefaultPolicy()
	if cfg.RetryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialBackoffMs > 0 {
		policy.InitialBackoff = time.Duration(cfg.RetryInitialBackoffMs) * time.Millisecond
	}
	if cfg.RetryMaxBackoffMs > 0 {
		policy.MaxBackoff = time.Duration(cfg.RetryMaxBackoffMs) * time.Millisecond
	}
	policy.BreakerEnabled = cfg.BreakerEnabled

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(policy),
		LagObserver:        opts.QueueLagObserver,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	genClient := generation.New(
		cfg.GenerationURL,
		time.Duration(cfg.GenerationTimeoutSeconds)*time.Second,
		policy,
	)
	styleClient := generation.NewStyleClient(genClient)

	var trace ports.TraceGraph = nopTraceGraph{}
	closeTrace := func() {}
	if cfg.TraceEnabled && cfg.Neo4jURI != "" {
		tg, err := neo4j.New(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return nil, fmt.Errorf("init trace graph: %w", err)
		}
		trace = tg
		closeTrace = func() { _ = tg.Close(context.Background()) }
	}

	locks := usecase.NewOutlineLocks()
	batchMetrics := opts.BatchMetrics
	if batchMetrics == nil {
		batchMetrics = usecase.NopBatchMetrics{}
	}

	bodySanitizer := sanitizer.New()
	outlines := usecase.NewOutlineUseCase(outlineRepo, contentRepo, markdown.New(), bodySanitizer, locks, logger)
	content := usecase.NewContentUseCase(
		outlineRepo,
		contentRepo,
		assetRepo,
		genClient,
		extractor.NewExtractor(storage),
		trace,
		bodySanitizer,
		locks,
		logger,
	)
	batch := usecase.NewBatchUseCase(
		outlineRepo,
		contentRepo,
		content,
		queue,
		locks,
		batchMetrics,
		logger,
		cfg.BatchSkipFinal,
	)
	render := usecase.NewRenderUseCase(outlineRepo, contentRepo, styleClient, xlsx.New(), logger, cfg.StyleTemplate)
	assets := usecase.NewAssetIngestUseCase(assetRepo, storage, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,

		Outlines: outlines,
		Content:  content,
		Batch:    batch,
		Render:   render,
		Assets:   assets,

		closeFn: func() {
			queue.Close()
			closeTrace()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

type nopTraceGraph struct{}

func (nopTraceGraph) RecordGeneration(context.Context, domain.OutlineNode, []string) error {
	return nil
}

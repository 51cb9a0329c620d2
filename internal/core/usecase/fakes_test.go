package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/ekomarov/drafter/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type outlineRepoFake struct {
	outlines map[string]domain.Outline
	nodes    map[string][]domain.OutlineNode

	createErr error
	saveErr   error

	saveCalls   int
	lastRemoved []string
}

func newOutlineRepoFake() *outlineRepoFake {
	return &outlineRepoFake{
		outlines: make(map[string]domain.Outline),
		nodes:    make(map[string][]domain.OutlineNode),
	}
}

func (f *outlineRepoFake) CreateOutline(_ context.Context, o *domain.Outline) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.outlines[o.ID] = *o
	return nil
}

func (f *outlineRepoFake) GetOutline(_ context.Context, id string) (*domain.Outline, error) {
	o, ok := f.outlines[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrOutlineNotFound, "get outline", fmt.Errorf("outline %s", id))
	}
	return &o, nil
}

func (f *outlineRepoFake) ListOutlines(context.Context) ([]domain.Outline, error) {
	out := make([]domain.Outline, 0, len(f.outlines))
	for _, o := range f.outlines {
		out = append(out, o)
	}
	return out, nil
}

func (f *outlineRepoFake) DeleteOutline(_ context.Context, id string) error {
	if _, ok := f.outlines[id]; !ok {
		return domain.WrapError(domain.ErrOutlineNotFound, "delete outline", fmt.Errorf("outline %s", id))
	}
	delete(f.outlines, id)
	delete(f.nodes, id)
	return nil
}

func (f *outlineRepoFake) ListNodes(_ context.Context, outlineID string) ([]domain.OutlineNode, error) {
	return append([]domain.OutlineNode(nil), f.nodes[outlineID]...), nil
}

func (f *outlineRepoFake) FindNodeOutline(_ context.Context, nodeID string) (string, error) {
	for outlineID, nodes := range f.nodes {
		for _, n := range nodes {
			if n.ID == nodeID {
				return outlineID, nil
			}
		}
	}
	return "", domain.WrapError(domain.ErrNodeNotFound, "find node outline", fmt.Errorf("node %s", nodeID))
}

func (f *outlineRepoFake) SaveTree(_ context.Context, outlineID string, nodes []domain.OutlineNode, removedIDs []string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	f.lastRemoved = removedIDs
	f.nodes[outlineID] = append([]domain.OutlineNode(nil), nodes...)
	return nil
}

type contentRepoFake struct {
	entries map[string]domain.ContentEntry

	upsertErr error
	upserts   []domain.ContentEntry
	removed   []string
}

func newContentRepoFake() *contentRepoFake {
	return &contentRepoFake{entries: make(map[string]domain.ContentEntry)}
}

func (f *contentRepoFake) Get(_ context.Context, nodeID string) (*domain.ContentEntry, error) {
	e, ok := f.entries[nodeID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *contentRepoFake) ListByOutline(context.Context, string) (map[string]domain.ContentEntry, error) {
	out := make(map[string]domain.ContentEntry, len(f.entries))
	for k, v := range f.entries {
		out[k] = v
	}
	return out, nil
}

func (f *contentRepoFake) Upsert(_ context.Context, entry domain.ContentEntry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.entries[entry.NodeID] = entry
	f.upserts = append(f.upserts, entry)
	return nil
}

func (f *contentRepoFake) Remove(_ context.Context, nodeID string) error {
	delete(f.entries, nodeID)
	f.removed = append(f.removed, nodeID)
	return nil
}

type assetRepoFake struct {
	assets    []domain.Asset
	createErr error
}

func (f *assetRepoFake) CreateAsset(_ context.Context, a *domain.Asset) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.assets = append(f.assets, *a)
	return nil
}

func (f *assetRepoFake) ListAssets(context.Context) ([]domain.Asset, error) {
	return append([]domain.Asset(nil), f.assets...), nil
}

func (f *assetRepoFake) GetAsset(_ context.Context, id string) (*domain.Asset, error) {
	for _, a := range f.assets {
		if a.ID == id {
			copyA := a
			return &copyA, nil
		}
	}
	return nil, domain.WrapError(domain.ErrInvalidInput, "get asset", fmt.Errorf("asset %s", id))
}

type storageFake struct {
	saved   map[string][]byte
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{saved: make(map[string][]byte)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = b
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.saved[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type generatorFake struct {
	bodies map[string]string
	errOn  map[string]error
	calls  []domain.GenerationRequest
}

func (f *generatorFake) GenerateSection(_ context.Context, req domain.GenerationRequest) (string, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.errOn[req.Title]; ok {
		return "", err
	}
	if body, ok := f.bodies[req.Title]; ok {
		return body, nil
	}
	return "<p>generated: " + req.Title + "</p>", nil
}

type requirementExtractorFake struct {
	texts map[string]string
	err   error
}

func (f *requirementExtractorFake) Extract(_ context.Context, asset *domain.Asset) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[asset.ID], nil
}

type traceGraphFake struct {
	records []string
	err     error
}

func (f *traceGraphFake) RecordGeneration(_ context.Context, node domain.OutlineNode, _ []string) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, node.ID)
	return nil
}

type sanitizerFake struct {
	calls  int
	inputs []string
}

func (f *sanitizerFake) Sanitize(html string) string {
	f.calls++
	f.inputs = append(f.inputs, html)
	return html
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishOutlineGeneration(_ context.Context, outlineID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, outlineID)
	return nil
}

func (f *queueFake) SubscribeOutlineGeneration(context.Context, func(context.Context, string) error) error {
	return nil
}

type styleProviderFake struct {
	styles []domain.StyleHint
	err    error
}

func (f *styleProviderFake) Styles(context.Context, string) ([]domain.StyleHint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.styles, nil
}

type exporterFake struct {
	lastEntries []domain.TOCEntry
	lastStyles  []domain.StyleHint
}

func (f *exporterFake) ExportXLSX(_ domain.Outline, entries []domain.TOCEntry, styles []domain.StyleHint) ([]byte, error) {
	f.lastEntries = entries
	f.lastStyles = styles
	return []byte("xlsx"), nil
}

type importerFake struct {
	sections []domain.ImportedSection
	err      error
}

func (f *importerFake) Parse(io.Reader) ([]domain.ImportedSection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sections, nil
}

type noopBatchMetrics struct{}

func (noopBatchMetrics) ObserveSection(string, time.Duration) {}
func (noopBatchMetrics) ObserveBatch(string, time.Duration)   {}

package httpadapter

import (
	"context"
	"io"
	"net/http"

	"github.com/ekomarov/drafter/internal/config"
	"github.com/ekomarov/drafter/internal/core/domain"
)

type outlineSvcFake struct {
	outline *domain.Outline
	detail  *domain.OutlineDetail
	node    *domain.OutlineNode
	removed []string
	err     error

	lastName   string
	lastNodeID string
}

func (f *outlineSvcFake) CreateOutline(_ context.Context, name string) (*domain.Outline, error) {
	f.lastName = name
	return f.outline, f.err
}

func (f *outlineSvcFake) ListOutlines(context.Context) ([]domain.Outline, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.outline == nil {
		return nil, nil
	}
	return []domain.Outline{*f.outline}, nil
}

func (f *outlineSvcFake) GetDetail(_ context.Context, outlineID string) (*domain.OutlineDetail, error) {
	return f.detail, f.err
}

func (f *outlineSvcFake) DeleteOutline(context.Context, string) error {
	return f.err
}

func (f *outlineSvcFake) AddNode(_ context.Context, _, _, _ string) (*domain.OutlineNode, error) {
	return f.node, f.err
}

func (f *outlineSvcFake) RenameNode(_ context.Context, nodeID, _ string) (*domain.OutlineNode, error) {
	f.lastNodeID = nodeID
	return f.node, f.err
}

func (f *outlineSvcFake) DeleteNode(_ context.Context, nodeID string) ([]string, error) {
	f.lastNodeID = nodeID
	return f.removed, f.err
}

func (f *outlineSvcFake) MoveNode(_ context.Context, nodeID, _ string, _ int) (*domain.OutlineNode, error) {
	f.lastNodeID = nodeID
	return f.node, f.err
}

func (f *outlineSvcFake) ImportMarkdown(_ context.Context, name string, _ io.Reader) (*domain.OutlineDetail, error) {
	f.lastName = name
	return f.detail, f.err
}

type contentSvcFake struct {
	entry *domain.ContentEntry
	err   error

	lastBody   string
	lastStatus domain.ContentStatus
	lastReqs   string
	lastAssets []string
	resets     int
}

func (f *contentSvcFake) GetContent(_ context.Context, nodeID string) (*domain.ContentEntry, error) {
	return f.entry, f.err
}

func (f *contentSvcFake) PutContent(_ context.Context, _, body string, status domain.ContentStatus) (*domain.ContentEntry, error) {
	f.lastBody = body
	f.lastStatus = status
	return f.entry, f.err
}

func (f *contentSvcFake) ResetContent(context.Context, string) error {
	f.resets++
	return f.err
}

func (f *contentSvcFake) GenerateNode(_ context.Context, _ string, requirements string, assetIDs []string) (*domain.ContentEntry, error) {
	f.lastReqs = requirements
	f.lastAssets = assetIDs
	return f.entry, f.err
}

type batchSvcFake struct {
	err      error
	enqueued []string
}

func (f *batchSvcFake) EnqueueOutline(_ context.Context, outlineID string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, outlineID)
	return nil
}

func (f *batchSvcFake) GenerateOutline(context.Context, string) error {
	return f.err
}

type renderSvcFake struct {
	doc    *domain.RenderedDocument
	xlsx   []byte
	styles []domain.StyleHint
	err    error
}

func (f *renderSvcFake) Styles(_ context.Context, _ string) ([]domain.StyleHint, error) {
	return f.styles, f.err
}

func (f *renderSvcFake) Render(_ context.Context, _ string) (*domain.RenderedDocument, error) {
	return f.doc, f.err
}

func (f *renderSvcFake) ExportTOC(_ context.Context, _ string) ([]byte, error) {
	return f.xlsx, f.err
}

type ingestSvcFake struct {
	report *domain.UploadReport
	err    error

	lastFiles    []domain.UploadFile
	lastCategory string
}

func (f *ingestSvcFake) Upload(_ context.Context, files []domain.UploadFile, category string) (*domain.UploadReport, error) {
	f.lastFiles = files
	f.lastCategory = category
	return f.report, f.err
}

func (f *ingestSvcFake) List(context.Context) ([]domain.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.report == nil {
		return nil, nil
	}
	return f.report.Accepted, nil
}

type testServices struct {
	outlines *outlineSvcFake
	content  *contentSvcFake
	batch    *batchSvcFake
	render   *renderSvcFake
	assets   *ingestSvcFake
}

func newTestServices() *testServices {
	return &testServices{
		outlines: &outlineSvcFake{
			outline: &domain.Outline{ID: "o1", Name: "Handbook"},
			detail: &domain.OutlineDetail{
				Outline: domain.Outline{ID: "o1", Name: "Handbook"},
			},
			node: &domain.OutlineNode{ID: "n1", OutlineID: "o1", Title: "Intro", Level: 1, OrderNo: "1"},
		},
		content: &contentSvcFake{
			entry: &domain.ContentEntry{NodeID: "n1", Body: "<p>hi</p>", Status: domain.StatusDraft},
		},
		batch:  &batchSvcFake{},
		render: &renderSvcFake{doc: &domain.RenderedDocument{}},
		assets: &ingestSvcFake{report: &domain.UploadReport{}},
	}
}

func newTestHandler(cfg config.Config) http.Handler {
	return newTestHandlerWith(cfg, newTestServices())
}

func newTestHandlerWith(cfg config.Config, svc *testServices) http.Handler {
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	rt := NewRouter(cfg, svc.outlines, svc.content, svc.batch, svc.render, svc.assets, nil)
	return rt.Handler()
}

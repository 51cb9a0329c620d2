package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/ekomarov/drafter/internal/core/domain"
)

type renderFixture struct {
	repo     *outlineRepoFake
	content  *contentRepoFake
	styles   *styleProviderFake
	exporter *exporterFake
	uc       *RenderUseCase
	outlines *OutlineUseCase
}

func newRenderFixture(t *testing.T) *renderFixture {
	t.Helper()

	f := &renderFixture{
		repo:     newOutlineRepoFake(),
		content:  newContentRepoFake(),
		styles:   &styleProviderFake{},
		exporter: &exporterFake{},
	}
	f.uc = NewRenderUseCase(f.repo, f.content, f.styles, f.exporter, testLogger(), "default")
	f.outlines = NewOutlineUseCase(f.repo, f.content, &importerFake{}, &sanitizerFake{}, NewOutlineLocks(), testLogger())
	return f
}

func TestRenderMergesNodesAndContent(t *testing.T) {
	f := newRenderFixture(t)
	ctx := context.Background()

	o, _ := f.outlines.CreateOutline(ctx, "proposal")
	a, _ := f.outlines.AddNode(ctx, o.ID, "", "Overview")
	b, _ := f.outlines.AddNode(ctx, o.ID, a.ID, "Background")
	f.content.entries[a.ID] = domain.ContentEntry{
		NodeID: a.ID,
		Body:   "<p>The overview body has five words here.</p>",
		Status: domain.StatusGenerated,
	}

	doc, err := f.uc.Render(ctx, o.ID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.Placeholder {
		t.Fatal("expected a real render, not placeholder")
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Node.OrderNo != "1" || doc.Sections[1].Node.OrderNo != "1.1" {
		t.Fatalf("expected document order 1, 1.1, got %q %q", doc.Sections[0].Node.OrderNo, doc.Sections[1].Node.OrderNo)
	}
	if doc.Sections[0].WordCount != 7 {
		t.Fatalf("expected word count 7, got %d", doc.Sections[0].WordCount)
	}
	if doc.Sections[1].Body != "" || doc.Sections[1].Status != domain.StatusDraft {
		t.Fatalf("expected node %s to render as empty draft, got %+v", b.ID, doc.Sections[1])
	}
	if !strings.Contains(doc.HTML, "<h1>1 Overview</h1>") {
		t.Fatalf("expected numbered heading in merged html, got %q", doc.HTML)
	}
}

func TestRenderEmptyOutlineReturnsPlaceholder(t *testing.T) {
	f := newRenderFixture(t)
	ctx := context.Background()

	o, _ := f.outlines.CreateOutline(ctx, "empty")

	doc, err := f.uc.Render(ctx, o.ID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !doc.Placeholder {
		t.Fatal("expected placeholder render for empty outline")
	}
	if len(doc.Sections) != 0 {
		t.Fatalf("expected no persisted sections, got %d", len(doc.Sections))
	}
	if !strings.Contains(doc.HTML, "Project Overview") || !strings.Contains(doc.HTML, "2.1") {
		t.Fatalf("expected placeholder skeleton in html, got %q", doc.HTML)
	}
	if f.content.upserts != nil {
		t.Fatalf("placeholder must not be persisted, got upserts %v", f.content.upserts)
	}
}

func TestRenderUnknownOutline(t *testing.T) {
	f := newRenderFixture(t)

	_, err := f.uc.Render(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrOutlineNotFound) {
		t.Fatalf("expected ErrOutlineNotFound, got %v", err)
	}
}

func TestExportTOCPassesNumberedEntries(t *testing.T) {
	f := newRenderFixture(t)
	ctx := context.Background()
	f.styles.styles = []domain.StyleHint{{Level: 1, FontFamily: "Calibri", FontSize: 14, Bold: true}}

	o, _ := f.outlines.CreateOutline(ctx, "proposal")
	a, _ := f.outlines.AddNode(ctx, o.ID, "", "Overview")
	f.outlines.AddNode(ctx, o.ID, a.ID, "Background")

	data, err := f.uc.ExportTOC(ctx, o.ID)
	if err != nil {
		t.Fatalf("export toc: %v", err)
	}
	if string(data) != "xlsx" {
		t.Fatalf("expected exporter output passed through, got %q", data)
	}
	if len(f.exporter.lastEntries) != 2 || f.exporter.lastEntries[1].Numbering != "1.1" {
		t.Fatalf("expected numbered entries, got %+v", f.exporter.lastEntries)
	}
	if len(f.exporter.lastStyles) != 1 {
		t.Fatalf("expected style hints forwarded, got %+v", f.exporter.lastStyles)
	}
}

func TestExportTOCEmptyOutlineUsesPlaceholder(t *testing.T) {
	f := newRenderFixture(t)
	ctx := context.Background()

	o, _ := f.outlines.CreateOutline(ctx, "empty")
	if _, err := f.uc.ExportTOC(ctx, o.ID); err != nil {
		t.Fatalf("export toc: %v", err)
	}
	if len(f.exporter.lastEntries) != 5 {
		t.Fatalf("expected 5 placeholder entries, got %d", len(f.exporter.lastEntries))
	}
}

func TestExportTOCStyleFailureFallsBackUnstyled(t *testing.T) {
	f := newRenderFixture(t)
	ctx := context.Background()
	f.styles.err = domain.WrapError(domain.ErrNetworkFailed, "fetch styles", context.DeadlineExceeded)

	o, _ := f.outlines.CreateOutline(ctx, "proposal")
	f.outlines.AddNode(ctx, o.ID, "", "Overview")

	if _, err := f.uc.ExportTOC(ctx, o.ID); err != nil {
		t.Fatalf("expected export to survive style failure, got %v", err)
	}
	if f.exporter.lastStyles != nil {
		t.Fatalf("expected unstyled export, got %+v", f.exporter.lastStyles)
	}
}

func TestStylesPassesThroughProvider(t *testing.T) {
	f := newRenderFixture(t)
	f.styles.styles = []domain.StyleHint{{Level: 1, FontFamily: "Times New Roman", FontSize: 14, Bold: true}}

	styles, err := f.uc.Styles(context.Background(), "gost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(styles) != 1 || styles[0].FontFamily != "Times New Roman" {
		t.Fatalf("expected provider styles, got %v", styles)
	}
}

func TestStylesRejectsEmptyTemplate(t *testing.T) {
	f := newRenderFixture(t)

	_, err := f.uc.Styles(context.Background(), "  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

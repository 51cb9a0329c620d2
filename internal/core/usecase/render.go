package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/outline"
	"github.com/ekomarov/drafter/internal/core/ports"
)

const previewRunes = 160

// RenderUseCase merges the node forest with stored content into the
// flattened document view, and exports the numbered table of contents.
type RenderUseCase struct {
	outlines ports.OutlineRepository
	content  ports.ContentRepository
	styles   ports.StyleProvider
	exporter ports.TOCExporter
	logger   *slog.Logger

	template string
}

func NewRenderUseCase(
	outlines ports.OutlineRepository,
	content ports.ContentRepository,
	styles ports.StyleProvider,
	exporter ports.TOCExporter,
	logger *slog.Logger,
	template string,
) *RenderUseCase {
	if template == "" {
		template = "default"
	}
	return &RenderUseCase{
		outlines: outlines,
		content:  content,
		styles:   styles,
		exporter: exporter,
		logger:   logger,
		template: template,
	}
}

// Render returns the document-order section list with bodies merged in.
// Nodes without a stored entry render as empty drafts. An outline with
// no nodes at all renders the display-only placeholder skeleton, marked
// as such and never persisted.
func (uc *RenderUseCase) Render(ctx context.Context, outlineID string) (*domain.RenderedDocument, error) {
	o, tree, err := uc.load(ctx, outlineID)
	if err != nil {
		return nil, err
	}

	if tree.Len() == 0 {
		return placeholderDocument(*o), nil
	}

	entries, err := uc.content.ListByOutline(ctx, outlineID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	nodes := tree.Flatten()
	sections := make([]domain.RenderedSection, 0, len(nodes))
	var buf strings.Builder
	for _, n := range nodes {
		entry, ok := entries[n.ID]
		if !ok {
			entry = domain.EmptyContentEntry(n.ID)
		}
		text := textContent(entry.Body)
		sections = append(sections, domain.RenderedSection{
			Node:      n,
			Body:      entry.Body,
			Status:    entry.Status,
			Preview:   preview(text),
			WordCount: len(strings.Fields(text)),
		})
		fmt.Fprintf(&buf, "<h%d>%s %s</h%d>\n%s\n", headingTag(n.Level), n.OrderNo, html.EscapeString(n.Title), headingTag(n.Level), entry.Body)
	}

	return &domain.RenderedDocument{
		Outline:  *o,
		HTML:     buf.String(),
		Sections: sections,
	}, nil
}

// ExportTOC renders the numbered table of contents as a spreadsheet.
// An empty outline exports the same placeholder skeleton the UI shows.
func (uc *RenderUseCase) ExportTOC(ctx context.Context, outlineID string) ([]byte, error) {
	o, tree, err := uc.load(ctx, outlineID)
	if err != nil {
		return nil, err
	}

	entries := outline.NumberHeadings(tree.Headings())
	if len(entries) == 0 {
		entries = outline.PlaceholderTOC()
	}

	styles, err := uc.styles.Styles(ctx, uc.template)
	if err != nil {
		// Style hints are cosmetic; export falls back to unstyled rows.
		uc.logger.Warn("style hints unavailable", "outline_id", outlineID, "error", err)
		styles = nil
	}

	data, err := uc.exporter.ExportXLSX(*o, entries, styles)
	if err != nil {
		return nil, fmt.Errorf("export toc: %w", err)
	}
	return data, nil
}

// Styles passes template style hints through from the collaborator.
func (uc *RenderUseCase) Styles(ctx context.Context, template string) ([]domain.StyleHint, error) {
	if strings.TrimSpace(template) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fetch styles", errors.New("empty template"))
	}
	styles, err := uc.styles.Styles(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("fetch styles: %w", err)
	}
	return styles, nil
}

func (uc *RenderUseCase) load(ctx context.Context, outlineID string) (*domain.Outline, *outline.Tree, error) {
	o, err := uc.outlines.GetOutline(ctx, outlineID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch outline: %w", err)
	}
	nodes, err := uc.outlines.ListNodes(ctx, outlineID)
	if err != nil {
		return nil, nil, fmt.Errorf("list nodes: %w", err)
	}
	tree, err := outline.Build(outlineID, nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("build tree: %w", err)
	}
	return o, tree, nil
}

func placeholderDocument(o domain.Outline) *domain.RenderedDocument {
	var buf strings.Builder
	for _, e := range outline.PlaceholderTOC() {
		fmt.Fprintf(&buf, "<h%d>%s %s</h%d>\n", headingTag(e.Level), e.Numbering, e.Title, headingTag(e.Level))
	}
	return &domain.RenderedDocument{
		Outline:     o,
		HTML:        buf.String(),
		Placeholder: true,
	}
}

func headingTag(level int) int {
	if level > 6 {
		return 6
	}
	if level < 1 {
		return 1
	}
	return level
}

// textContent strips markup from a rich-text body, concatenating the
// text nodes with spaces.
func textContent(body string) string {
	if body == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body)
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(parts, " ")
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:previewRunes])) + "…"
}

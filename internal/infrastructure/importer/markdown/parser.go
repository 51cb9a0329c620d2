package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ekomarov/drafter/internal/core/domain"
)

// Parser turns a markdown document into a flat, document-order list of
// sections: each heading starts a section and the prose blocks under it
// become the section body. Level clamping is left to the outline layer.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(source io.Reader) ([]domain.ImportedSection, error) {
	src, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var sections []domain.ImportedSection
	var body bytes.Buffer

	flush := func() {
		if len(sections) == 0 {
			body.Reset()
			return
		}
		if t := strings.TrimSpace(body.String()); t != "" {
			sections[len(sections)-1].Body = t
		}
		body.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flush()
			sections = append(sections, domain.ImportedSection{
				Title: string(node.Text(src)),
				Level: node.Level,
			})
		default:
			if t := blockText(n, src); t != "" {
				if body.Len() > 0 {
					body.WriteString("\n\n")
				}
				body.WriteString(t)
			}
		}
	}
	flush()

	return sections, nil
}

func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

package outline

import (
	"sort"

	"github.com/ekomarov/drafter/internal/core/domain"
)

// NumberHeadings assigns dotted hierarchical numbering to a source
// outline of arbitrary origin. Levels are normalized first, siblings are
// ordered by OrderHint ascending (stable, ties keep input order), and a
// single depth-first pass assigns numbering. The input is never mutated.
// An empty input produces an empty result; substituting a placeholder is
// the caller's concern.
func NumberHeadings(src []domain.Heading) []domain.TOCEntry {
	if len(src) == 0 {
		return nil
	}
	headings := NormalizeLevels(src)

	type tocNode struct {
		heading  domain.Heading
		children []*tocNode
	}
	root := &tocNode{}
	stack := []*tocNode{root}
	for _, h := range headings {
		// After normalization h.Level is at most len(stack), so the
		// stack never underflows.
		stack = stack[:h.Level]
		node := &tocNode{heading: h}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, node)
		stack = append(stack, node)
	}

	var sortChildren func(n *tocNode)
	sortChildren = func(n *tocNode) {
		sort.SliceStable(n.children, func(i, j int) bool {
			return n.children[i].heading.OrderHint < n.children[j].heading.OrderHint
		})
		for _, c := range n.children {
			sortChildren(c)
		}
	}
	sortChildren(root)

	out := make([]domain.TOCEntry, 0, len(headings))
	var counters counterVector
	var visit func(n *tocNode, level int)
	visit = func(n *tocNode, level int) {
		for _, c := range n.children {
			out = append(out, domain.TOCEntry{
				Level:     level,
				Numbering: counters.next(level),
				Title:     c.heading.Title,
			})
			visit(c, level+1)
		}
	}
	visit(root, 1)
	return out
}

// PlaceholderTOC is the fixed display-only outline callers substitute
// when a document has no sections yet. It is never persisted.
func PlaceholderTOC() []domain.TOCEntry {
	return []domain.TOCEntry{
		{Level: 1, Numbering: "1", Title: "Project Overview"},
		{Level: 2, Numbering: "1.1", Title: "Background"},
		{Level: 2, Numbering: "1.2", Title: "Objectives"},
		{Level: 1, Numbering: "2", Title: "Technical Approach"},
		{Level: 2, Numbering: "2.1", Title: "Methodology"},
	}
}

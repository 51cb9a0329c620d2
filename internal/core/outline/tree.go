package outline

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ekomarov/drafter/internal/core/domain"
)

// Tree is an arena of outline nodes indexed by id, with ordered child-id
// links per parent. The empty parent key holds root nodes. Every
// structural mutation renumbers the whole tree, so Level, Position and
// OrderNo are always consistent with actual nesting when a node is read
// back out.
type Tree struct {
	outlineID string
	nodes     map[string]*domain.OutlineNode
	children  map[string][]string
}

func New(outlineID string) *Tree {
	return &Tree{
		outlineID: outlineID,
		nodes:     make(map[string]*domain.OutlineNode),
		children:  make(map[string][]string),
	}
}

// Build reconstructs a tree from stored nodes. Siblings keep their stored
// Position order; levels and numbering are recomputed from actual depth,
// so a malformed level column cannot survive a load.
func Build(outlineID string, nodes []domain.OutlineNode) (*Tree, error) {
	t := New(outlineID)
	for i := range nodes {
		n := nodes[i]
		if n.ID == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build tree", fmt.Errorf("node without id"))
		}
		if _, dup := t.nodes[n.ID]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build tree", fmt.Errorf("duplicate node id %s", n.ID))
		}
		n.OutlineID = outlineID
		t.nodes[n.ID] = &n
	}
	for id, n := range t.nodes {
		if n.ParentID != "" {
			if _, ok := t.nodes[n.ParentID]; !ok {
				return nil, domain.WrapError(domain.ErrInvalidInput, "build tree", fmt.Errorf("node %s references missing parent %s", id, n.ParentID))
			}
		}
		t.children[n.ParentID] = append(t.children[n.ParentID], id)
	}
	for parent := range t.children {
		ids := t.children[parent]
		sort.SliceStable(ids, func(i, j int) bool {
			return t.nodes[ids[i]].Position < t.nodes[ids[j]].Position
		})
	}
	if err := t.checkForest(); err != nil {
		return nil, err
	}
	t.renumber()
	return t, nil
}

// checkForest verifies that following parent links from every node
// terminates at a root.
func (t *Tree) checkForest() error {
	for id := range t.nodes {
		seen := map[string]bool{}
		for cur := id; cur != ""; cur = t.nodes[cur].ParentID {
			if seen[cur] {
				return domain.WrapError(domain.ErrInvalidInput, "build tree", fmt.Errorf("cycle through node %s", cur))
			}
			seen[cur] = true
		}
	}
	return nil
}

func (t *Tree) OutlineID() string { return t.outlineID }

func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node, so callers cannot bypass renumbering.
func (t *Tree) Node(id string) (domain.OutlineNode, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return domain.OutlineNode{}, false
	}
	return *n, true
}

// AddChild appends a new node as the last child of parentID, or as a new
// root when parentID is empty. The new node's id is returned inside the
// copied node.
func (t *Tree) AddChild(parentID, title string) (domain.OutlineNode, error) {
	if parentID != "" {
		if _, ok := t.nodes[parentID]; !ok {
			return domain.OutlineNode{}, domain.WrapError(domain.ErrNodeNotFound, "add child", fmt.Errorf("parent %s", parentID))
		}
	}
	n := &domain.OutlineNode{
		ID:        uuid.NewString(),
		OutlineID: t.outlineID,
		ParentID:  parentID,
		Title:     title,
	}
	t.nodes[n.ID] = n
	t.children[parentID] = append(t.children[parentID], n.ID)
	t.renumber()
	return *n, nil
}

// Rename updates the title only; identity, position and numbering are
// untouched.
func (t *Tree) Rename(id, title string) error {
	n, ok := t.nodes[id]
	if !ok {
		return domain.WrapError(domain.ErrNodeNotFound, "rename node", fmt.Errorf("node %s", id))
	}
	n.Title = title
	return nil
}

// Delete removes the node and its entire subtree and reports exactly the
// removed ids in document order, so the caller can cascade content
// deletion without guessing.
func (t *Tree) Delete(id string) ([]string, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNodeNotFound, "delete node", fmt.Errorf("node %s", id))
	}
	removed := t.subtreeIDs(id)
	t.children[n.ParentID] = removeID(t.children[n.ParentID], id)
	for _, rid := range removed {
		delete(t.nodes, rid)
		delete(t.children, rid)
	}
	t.renumber()
	return removed, nil
}

// Move reattaches a node (with its subtree) under newParentID at the
// given sibling position. Position is clamped to the sibling range.
// Moving a node into its own subtree is rejected.
func (t *Tree) Move(id, newParentID string, position int) error {
	n, ok := t.nodes[id]
	if !ok {
		return domain.WrapError(domain.ErrNodeNotFound, "move node", fmt.Errorf("node %s", id))
	}
	if newParentID != "" {
		if _, ok := t.nodes[newParentID]; !ok {
			return domain.WrapError(domain.ErrNodeNotFound, "move node", fmt.Errorf("parent %s", newParentID))
		}
		for _, sub := range t.subtreeIDs(id) {
			if sub == newParentID {
				return domain.WrapError(domain.ErrInvalidInput, "move node", fmt.Errorf("cannot move %s into its own subtree", id))
			}
		}
	}

	t.children[n.ParentID] = removeID(t.children[n.ParentID], id)
	siblings := t.children[newParentID]
	if position < 0 {
		position = 0
	}
	if position > len(siblings) {
		position = len(siblings)
	}
	siblings = append(siblings, "")
	copy(siblings[position+1:], siblings[position:])
	siblings[position] = id
	t.children[newParentID] = siblings
	n.ParentID = newParentID
	t.renumber()
	return nil
}

// Walk visits every node in document order (depth-first, children after
// parent, siblings in stored order) with a copy of each node.
func (t *Tree) Walk(fn func(n domain.OutlineNode) error) error {
	for _, id := range t.subtreeIDs("") {
		if err := fn(*t.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

// Flatten returns all nodes in document order.
func (t *Tree) Flatten() []domain.OutlineNode {
	out := make([]domain.OutlineNode, 0, len(t.nodes))
	_ = t.Walk(func(n domain.OutlineNode) error {
		out = append(out, n)
		return nil
	})
	return out
}

// Headings projects the tree onto the numberer's source shape.
func (t *Tree) Headings() []domain.Heading {
	out := make([]domain.Heading, 0, len(t.nodes))
	_ = t.Walk(func(n domain.OutlineNode) error {
		out = append(out, domain.Heading{Title: n.Title, Level: n.Level, OrderHint: n.Position})
		return nil
	})
	return out
}

// subtreeIDs lists id and all its descendants in document order. The
// empty id lists the whole forest.
func (t *Tree) subtreeIDs(id string) []string {
	var out []string
	var visit func(cur string)
	visit = func(cur string) {
		if cur != "" {
			out = append(out, cur)
		}
		for _, child := range t.children[cur] {
			visit(child)
		}
	}
	visit(id)
	return out
}

// renumber recomputes Level, Position and OrderNo for every node from
// scratch. OrderNo is derived state: it is never edited independently of
// structure.
func (t *Tree) renumber() {
	var counters counterVector
	var visit func(parent string, level int)
	visit = func(parent string, level int) {
		for pos, id := range t.children[parent] {
			n := t.nodes[id]
			n.Level = level
			n.Position = pos
			n.OrderNo = counters.next(level)
			visit(id, level+1)
		}
	}
	visit("", 1)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, cur := range ids {
		if cur != id {
			out = append(out, cur)
		}
	}
	return out
}

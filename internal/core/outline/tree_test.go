package outline

import (
	"strconv"
	"strings"
	"testing"

	"github.com/ekomarov/drafter/internal/core/domain"
)

func TestAddChildAssignsLevelAndOrderNo(t *testing.T) {
	tree := New("outline-1")

	first, err := tree.AddChild("", "Introduction")
	if err != nil {
		t.Fatalf("AddChild() error = %v", err)
	}
	if first.Level != 1 || first.OrderNo != "1" {
		t.Fatalf("expected level 1 order 1, got level %d order %q", first.Level, first.OrderNo)
	}

	child, err := tree.AddChild(first.ID, "Scope")
	if err != nil {
		t.Fatalf("AddChild() error = %v", err)
	}
	if child.Level != first.Level+1 {
		t.Fatalf("expected child level %d, got %d", first.Level+1, child.Level)
	}
	if child.OrderNo != first.OrderNo+".1" {
		t.Fatalf("expected order %q, got %q", first.OrderNo+".1", child.OrderNo)
	}

	second, err := tree.AddChild(first.ID, "Goals")
	if err != nil {
		t.Fatalf("AddChild() error = %v", err)
	}
	if second.OrderNo != "1.2" {
		t.Fatalf("expected order 1.2, got %q", second.OrderNo)
	}

	root2, err := tree.AddChild("", "Approach")
	if err != nil {
		t.Fatalf("AddChild() error = %v", err)
	}
	if root2.OrderNo != "2" {
		t.Fatalf("expected order 2, got %q", root2.OrderNo)
	}
}

func TestAddChildUnknownParent(t *testing.T) {
	tree := New("outline-1")
	if _, err := tree.AddChild("missing", "Orphan"); !domain.IsKind(err, domain.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestRenameChangesTitleOnly(t *testing.T) {
	tree := New("outline-1")
	n, _ := tree.AddChild("", "Draft title")

	if err := tree.Rename(n.ID, "Final title"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	got, ok := tree.Node(n.ID)
	if !ok {
		t.Fatalf("node disappeared after rename")
	}
	if got.Title != "Final title" {
		t.Fatalf("expected renamed title, got %q", got.Title)
	}
	if got.ID != n.ID || got.OrderNo != n.OrderNo || got.Level != n.Level {
		t.Fatalf("rename must not change identity or numbering: %+v vs %+v", got, n)
	}

	if err := tree.Rename("missing", "x"); !domain.IsKind(err, domain.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestDeleteRemovesExactSubtree(t *testing.T) {
	tree := New("outline-1")
	a, _ := tree.AddChild("", "A")
	b, _ := tree.AddChild(a.ID, "B")
	c, _ := tree.AddChild(b.ID, "C")
	d, _ := tree.AddChild(a.ID, "D")
	e, _ := tree.AddChild("", "E")

	removed, err := tree.Delete(b.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(removed) != 2 || removed[0] != b.ID || removed[1] != c.ID {
		t.Fatalf("expected removed [B C], got %v", removed)
	}
	for _, id := range []string{a.ID, d.ID, e.ID} {
		if _, ok := tree.Node(id); !ok {
			t.Fatalf("node %s outside subtree was removed", id)
		}
	}
	if got, _ := tree.Node(d.ID); got.OrderNo != "1.1" {
		t.Fatalf("expected D renumbered to 1.1, got %q", got.OrderNo)
	}

	if _, err := tree.Delete("missing"); !domain.IsKind(err, domain.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestDeleteFirstRootRenumbersRemaining(t *testing.T) {
	tree := New("outline-1")
	a, _ := tree.AddChild("", "A")
	tree.AddChild(a.ID, "B")
	c, _ := tree.AddChild("", "C")

	if _, err := tree.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if tree.Len() != 1 {
		t.Fatalf("expected single remaining node, got %d", tree.Len())
	}
	got, _ := tree.Node(c.ID)
	if got.OrderNo != "1" || got.Level != 1 {
		t.Fatalf("expected C renumbered to 1, got level %d order %q", got.Level, got.OrderNo)
	}
}

func TestMoveRejectsOwnSubtree(t *testing.T) {
	tree := New("outline-1")
	a, _ := tree.AddChild("", "A")
	b, _ := tree.AddChild(a.ID, "B")

	if err := tree.Move(a.ID, b.ID, 0); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := tree.Move(a.ID, a.ID, 0); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self move, got %v", err)
	}
}

func TestMoveRenumbersAffectedSiblings(t *testing.T) {
	tree := New("outline-1")
	a, _ := tree.AddChild("", "A")
	b, _ := tree.AddChild("", "B")
	c, _ := tree.AddChild("", "C")

	if err := tree.Move(c.ID, "", 0); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	wantOrder := map[string]string{c.ID: "1", a.ID: "2", b.ID: "3"}
	for id, want := range wantOrder {
		got, _ := tree.Node(id)
		if got.OrderNo != want {
			t.Fatalf("node %s: expected order %q, got %q", id, want, got.OrderNo)
		}
	}

	if err := tree.Move(b.ID, a.ID, 0); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	got, _ := tree.Node(b.ID)
	if got.Level != 2 || got.OrderNo != "2.1" || got.ParentID != a.ID {
		t.Fatalf("expected B at 2.1 under A, got %+v", got)
	}
}

func TestBuildRejectsMalformedForest(t *testing.T) {
	if _, err := Build("o", []domain.OutlineNode{
		{ID: "a", ParentID: "ghost", Title: "A"},
	}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing parent, got %v", err)
	}

	if _, err := Build("o", []domain.OutlineNode{
		{ID: "a", ParentID: "b", Title: "A"},
		{ID: "b", ParentID: "a", Title: "B"},
	}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for cycle, got %v", err)
	}

	if _, err := Build("o", []domain.OutlineNode{
		{ID: "a", Title: "A"},
		{ID: "a", Title: "A again"},
	}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate id, got %v", err)
	}
}

func TestBuildRecomputesLevelsFromDepth(t *testing.T) {
	tree, err := Build("o", []domain.OutlineNode{
		{ID: "a", Title: "A", Level: 7, Position: 0},
		{ID: "b", ParentID: "a", Title: "B", Level: 0, Position: 0},
		{ID: "c", Title: "C", Level: -3, Position: 1},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := map[string][2]interface{}{
		"a": {1, "1"},
		"b": {2, "1.1"},
		"c": {1, "2"},
	}
	for id, w := range want {
		got, _ := tree.Node(id)
		if got.Level != w[0].(int) || got.OrderNo != w[1].(string) {
			t.Fatalf("node %s: expected level %v order %v, got level %d order %q", id, w[0], w[1], got.Level, got.OrderNo)
		}
	}
}

func TestRenumberingIsIdempotentAcrossRebuilds(t *testing.T) {
	tree := New("o")
	a, _ := tree.AddChild("", "A")
	tree.AddChild(a.ID, "B")
	b2, _ := tree.AddChild(a.ID, "B2")
	tree.AddChild(b2.ID, "C")
	tree.AddChild("", "D")

	first := tree.Flatten()
	rebuilt, err := Build("o", first)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second := rebuilt.Flatten()

	if len(first) != len(second) {
		t.Fatalf("node count changed across rebuild: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].OrderNo != second[i].OrderNo {
			t.Fatalf("numbering not idempotent at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestNumberingStrictlyIncreasesInDocumentOrder(t *testing.T) {
	tree := New("o")
	a, _ := tree.AddChild("", "A")
	tree.AddChild(a.ID, "A1")
	a2, _ := tree.AddChild(a.ID, "A2")
	tree.AddChild(a2.ID, "A2a")
	tree.AddChild("", "B")
	tree.AddChild("", "C")

	flat := tree.Flatten()
	for i := 1; i < len(flat); i++ {
		if compareOrderNo(flat[i-1].OrderNo, flat[i].OrderNo) >= 0 {
			t.Fatalf("numbering not strictly increasing: %q then %q", flat[i-1].OrderNo, flat[i].OrderNo)
		}
	}
}

// compareOrderNo compares dotted numberings lexicographically over their
// integer components.
func compareOrderNo(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, _ := strconv.Atoi(as[i])
		bi, _ := strconv.Atoi(bs[i])
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

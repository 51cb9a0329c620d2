package domain

import "time"

// Outline is the aggregate root for one composed document: a named,
// ordered forest of titled section nodes.
type Outline struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OutlineNode is one section in an outline. Identity is stable across
// edits; Level and OrderNo are derived from tree position and are never
// authoritative on their own.
type OutlineNode struct {
	ID        string `json:"id"`
	OutlineID string `json:"outline_id"`
	ParentID  string `json:"parent_id,omitempty"`
	Title     string `json:"title"`
	Level     int    `json:"level"`
	OrderNo   string `json:"order_no"`
	Position  int    `json:"position"`
}

// Heading is a structure-only view of a section, the input shape of the
// TOC numberer. OrderHint orders siblings before numbering; ties keep
// input order.
type Heading struct {
	Title     string `json:"title"`
	Level     int    `json:"level"`
	OrderHint int    `json:"order_hint"`
}

// TOCEntry is one numbered line of a table of contents.
type TOCEntry struct {
	Level     int    `json:"level"`
	Numbering string `json:"numbering"`
	Title     string `json:"title"`
}

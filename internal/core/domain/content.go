package domain

import "time"

type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusGenerated ContentStatus = "generated"
	StatusFinal     ContentStatus = "final"
)

// ValidContentStatus reports whether s is one of the known lifecycle states.
func ValidContentStatus(s ContentStatus) bool {
	switch s {
	case StatusDraft, StatusGenerated, StatusFinal:
		return true
	default:
		return false
	}
}

// ContentEntry holds the rich-text body and lifecycle status for one
// outline node. A node without an explicit entry behaves as an empty
// draft entry.
type ContentEntry struct {
	NodeID    string        `json:"node_id"`
	Body      string        `json:"body"`
	Status    ContentStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// EmptyContentEntry is the implicit default for a node with no stored entry.
func EmptyContentEntry(nodeID string) ContentEntry {
	return ContentEntry{NodeID: nodeID, Body: "", Status: StatusDraft}
}

// GenerationRequest is the payload sent to the content-generation
// collaborator for one section.
type GenerationRequest struct {
	Title        string `json:"title"`
	Level        int    `json:"level"`
	Requirements string `json:"requirements"`
}

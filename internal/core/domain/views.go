package domain

// OutlineDetail is the read model for one outline: metadata, the node
// forest in document order, and its numbered table of contents.
type OutlineDetail struct {
	Outline Outline       `json:"outline"`
	Nodes   []OutlineNode `json:"nodes"`
	TOC     []TOCEntry    `json:"toc"`
}

// RenderedSection joins one node with its content entry at render time.
type RenderedSection struct {
	Node      OutlineNode   `json:"node"`
	Body      string        `json:"body"`
	Status    ContentStatus `json:"status"`
	Preview   string        `json:"preview,omitempty"`
	WordCount int           `json:"word_count"`
}

// RenderedDocument is the flattened, concatenated document view.
// Placeholder marks the display-only fallback for an empty outline; a
// placeholder render is never persisted.
type RenderedDocument struct {
	Outline     Outline           `json:"outline"`
	HTML        string            `json:"html"`
	Sections    []RenderedSection `json:"sections"`
	Placeholder bool              `json:"placeholder"`
}

// UploadFile is one incoming file in an asset upload batch.
type UploadFile struct {
	Filename string
	MimeType string
	Data     []byte
}

// UploadReport says which files were stored and which were skipped by
// the pre-upload filename dedup.
type UploadReport struct {
	Accepted []Asset  `json:"accepted"`
	Skipped  []string `json:"skipped"`
}

package domain

import "time"

// Asset is an uploaded source file (requirement document, reference
// material) kept in object storage.
type Asset struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Category    string    `json:"category,omitempty"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// StyleHint carries presentation attributes for one outline level.
// Cosmetic only: nothing in the data model depends on it.
type StyleHint struct {
	Level      int    `json:"level"`
	FontFamily string `json:"font_family"`
	FontSize   int    `json:"font_size"`
	Bold       bool   `json:"bold"`
	IndentPt   int    `json:"indent_pt"`
}

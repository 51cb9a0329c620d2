package domain

// ImportedSection is one heading (plus the prose under it) parsed out
// of an imported markdown document, in document order.
type ImportedSection struct {
	Title string
	Level int
	Body  string
}

package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// BodySanitizer strips scripts, event handlers and other unsafe markup
// from section bodies before they are stored. Standard formatting
// (paragraphs, emphasis, headings, lists, tables, links) passes through.
//
// Safe for concurrent use.
type BodySanitizer struct {
	policy *bluemonday.Policy
}

func New() *BodySanitizer {
	return &BodySanitizer{policy: bluemonday.UGCPolicy()}
}

func (s *BodySanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

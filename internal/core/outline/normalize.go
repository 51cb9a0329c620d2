package outline

import "github.com/ekomarov/drafter/internal/core/domain"

// NormalizeLevels clamps declared heading levels so that nesting depth
// grows at most one step at a time: each entry gets
// max(1, min(declared, prior+1)) relative to the depth actually reached
// so far. Deeper jumps are flattened to the next valid depth rather than
// rejected. The pass is deterministic and idempotent.
func NormalizeLevels(src []domain.Heading) []domain.Heading {
	if len(src) == 0 {
		return nil
	}
	out := make([]domain.Heading, len(src))
	prior := 0
	for i, h := range src {
		level := h.Level
		if level > prior+1 {
			level = prior + 1
		}
		if level < 1 {
			level = 1
		}
		h.Level = level
		out[i] = h
		prior = level
	}
	return out
}

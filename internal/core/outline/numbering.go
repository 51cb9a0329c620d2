package outline

import (
	"strconv"
	"strings"
)

// counterVector produces conventional dotted outline numbering
// ("1", "1.1", "1.2", "2", ...) over a document-order walk of levels.
// Truncating back to a shallower level implicitly resets every deeper
// counter, which is exactly the reset-the-tail rule.
type counterVector []int

func (c *counterVector) next(level int) string {
	if level < 1 {
		level = 1
	}
	v := *c
	for len(v) < level {
		v = append(v, 0)
	}
	v = v[:level]
	v[level-1]++
	*c = v
	return v.render()
}

func (c counterVector) render() string {
	parts := make([]string, 0, len(c))
	for _, n := range c {
		if n == 0 {
			break
		}
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ".")
}

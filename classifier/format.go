package classifier

import (
	"fmt"
	"strings"
)

// FormatCounts renders a run as the text shown to the user: one line per
// label that was predicted at least once, in class index order.
func FormatCounts(classes *ClassTable, res *Result) string {
	var b strings.Builder
	b.WriteString("Class Counts:\n")
	if res == nil {
		return b.String()
	}
	for i, label := range classes.Labels() {
		n, ok := res.Counts[label]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%d:%s, Count: %d\n", i, label, n)
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, "Skipped: %d\n", len(res.Skipped))
	}
	return b.String()
}

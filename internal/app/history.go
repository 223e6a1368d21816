package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"yashubustudio/pyroclassifier/classifier"
	"yashubustudio/pyroclassifier/internal/history"
)

type historyStore interface {
	Record(ctx context.Context, run history.Run) (int64, error)
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

// formatHistory renders stored runs newest first, counts in class order.
func formatHistory(classes *classifier.ClassTable, runs []history.Run) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	for i, run := range runs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#%d %s  %s  (%s)\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(run.Directory),
			run.Elapsed.Round(time.Millisecond))
		parts := make([]string, 0, len(run.Counts))
		for _, label := range classes.Labels() {
			if n, ok := run.Counts[label]; ok {
				parts = append(parts, fmt.Sprintf("%s=%d", label, n))
			}
		}
		fmt.Fprintf(&b, "  %s", strings.Join(parts, " "))
		if run.Skipped > 0 {
			fmt.Fprintf(&b, "  skipped=%d", run.Skipped)
		}
		b.WriteString("\n")
	}
	return b.String()
}

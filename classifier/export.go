package classifier

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes one row per class (index, label, count), zero counts
// included.
func WriteCSV(w io.Writer, classes *ClassTable, res *Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"index", "label", "count"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, label := range classes.Labels() {
		row := []string{strconv.Itoa(i), label, strconv.Itoa(res.Counts[label])}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// SaveCSV writes the count table to path, creating parent directories.
func SaveCSV(path string, classes *ClassTable, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := WriteCSV(f, classes, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

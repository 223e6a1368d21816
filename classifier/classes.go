package classifier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"yashubustudio/pyroclassifier/resources"
)

// DefaultLabels are the life-cycle stages in model output order.
var DefaultLabels = []string{"Dead", "Veg", "Div", "PreDiv", "Spore", "New"}

// ClassTable is the immutable bidirectional mapping between class labels and
// model output indices.
type ClassTable struct {
	labels  []string
	indices map[string]int
}

type yamlClassFile struct {
	Classes []yamlClass `yaml:"classes"`
}

type yamlClass struct {
	Index int    `yaml:"index"`
	Label string `yaml:"label"`
}

// NewClassTable builds a table where labels[i] maps to index i.
func NewClassTable(labels []string) (*ClassTable, error) {
	if len(labels) == 0 {
		return nil, errors.New("class table is empty")
	}
	t := &ClassTable{
		labels:  make([]string, len(labels)),
		indices: make(map[string]int, len(labels)),
	}
	for i, raw := range labels {
		label := NormalizeLabel(raw)
		if label == "" {
			return nil, fmt.Errorf("class %d has an empty label", i)
		}
		if prev, ok := t.indices[label]; ok {
			return nil, fmt.Errorf("label %q used by classes %d and %d", label, prev, i)
		}
		t.labels[i] = label
		t.indices[label] = i
	}
	return t, nil
}

// DefaultClassTable returns the built-in six-class table.
func DefaultClassTable() *ClassTable {
	t, err := NewClassTable(DefaultLabels)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadClassTable reads the class table from path, or the embedded default
// when path is empty.
func LoadClassTable(path string) (*ClassTable, error) {
	if path == "" {
		return LoadClassTableFS(resources.ClassFiles, resources.ClassFileName)
	}
	clean := filepath.Clean(path)
	return LoadClassTableFS(os.DirFS(filepath.Dir(clean)), filepath.Base(clean))
}

// LoadClassTableFS reads a YAML class table from fsys.
func LoadClassTableFS(fsys fs.FS, name string) (*ClassTable, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read class table %s: %w", name, err)
	}
	var def yamlClassFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse class table %s: %w", name, err)
	}
	labels, err := labelsFromYAML(def.Classes)
	if err != nil {
		return nil, fmt.Errorf("class table %s: %w", name, err)
	}
	return NewClassTable(labels)
}

func labelsFromYAML(classes []yamlClass) ([]string, error) {
	sorted := append([]yamlClass(nil), classes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	labels := make([]string, len(sorted))
	for i, c := range sorted {
		if c.Index != i {
			return nil, fmt.Errorf("indices must cover 0..%d without gaps, found %d at position %d", len(sorted)-1, c.Index, i)
		}
		labels[i] = c.Label
	}
	return labels, nil
}

// Len returns the number of classes.
func (t *ClassTable) Len() int {
	return len(t.labels)
}

// Label returns the label for a class index.
func (t *ClassTable) Label(index int) (string, bool) {
	if index < 0 || index >= len(t.labels) {
		return "", false
	}
	return t.labels[index], true
}

// Index returns the class index for a label.
func (t *ClassTable) Index(label string) (int, bool) {
	i, ok := t.indices[NormalizeLabel(label)]
	return i, ok
}

// Labels returns a copy of the labels in index order.
func (t *ClassTable) Labels() []string {
	return append([]string(nil), t.labels...)
}

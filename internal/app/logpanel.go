package app

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2/data/binding"
)

// logPanel is the io.Writer behind the window's log view. It keeps the
// newest max lines.
type logPanel struct {
	mu    sync.Mutex
	text  binding.String
	lines []string
	max   int
}

func newLogPanel(max int) *logPanel {
	return &logPanel{text: binding.NewString(), max: max}
}

func (p *logPanel) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for line := range strings.Lines(string(b)) {
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			p.lines = append(p.lines, line)
		}
	}
	if drop := len(p.lines) - p.max; drop > 0 {
		p.lines = append(p.lines[:0], p.lines[drop:]...)
	}
	return len(b), p.text.Set(strings.Join(p.lines, "\n"))
}

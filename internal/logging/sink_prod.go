//go:build prod

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName   = "pyroclassifier.log"
	maxLogSizeMB  = 20
	maxLogBackups = 5
	maxLogAgeDays = 30
)

func openSink(dir string) (io.Writer, func() error, error) {
	if dir == "" {
		dir = defaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, logFileName),
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
		LocalTime:  true,
	}
	return lj, lj.Close, nil
}

// defaultDir is <user config dir>/pyroclassifier/logs, or the temp dir when
// no user dir can be resolved.
func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "pyroclassifier", "logs")
}

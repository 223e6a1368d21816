package classifier

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"
)

// RuntimeLibEnv overrides the ONNX Runtime shared library location.
const RuntimeLibEnv = "ONNXRUNTIME_LIB"

// RuntimeLibPath picks the shared library: the configured path, then
// $ONNXRUNTIME_LIB, then a per-OS default.
func RuntimeLibPath(configured string) string {
	if configured != "" {
		return configured
	}
	if p := os.Getenv(RuntimeLibEnv); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join("onnxruntime-win", "lib", "onnxruntime.dll")
	case "darwin":
		return "/usr/local/lib/libonnxruntime.dylib"
	default:
		return "/usr/local/lib/libonnxruntime.so"
	}
}

// InitRuntime loads the ONNX Runtime library and initializes the global
// environment. The returned func tears it down.
func InitRuntime(libPath string, logger *slog.Logger) (func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	path := RuntimeLibPath(libPath)
	ort.SetSharedLibraryPath(path)
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime (%s): %w", path, err)
	}
	logger.Info("ONNX Runtime initialized", "library", path)
	return func() {
		if err := ort.DestroyEnvironment(); err != nil {
			logger.Warn("Failed to destroy ONNX Runtime environment", "error", err)
		}
	}, nil
}

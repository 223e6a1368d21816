//go:build !prod

package logging

import (
	"io"
	"os"
)

func openSink(string) (io.Writer, func() error, error) {
	return os.Stdout, func() error { return nil }, nil
}

package classifier

import (
	"fmt"
	"time"
)

// Layout is the memory order of the model input tensor.
type Layout string

const (
	// LayoutNHWC stores pixels as [batch, height, width, channel], the Keras default.
	LayoutNHWC Layout = "nhwc"
	// LayoutNCHW stores pixels as [batch, channel, height, width].
	LayoutNCHW Layout = "nchw"
)

// Tensor is a single-element batch ready to be fed to a Model.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Counts maps a class label to the number of images predicted as that class.
type Counts map[string]int

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// FileError records why a directory entry was skipped.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one classification run.
type Result struct {
	Directory string
	Counts    Counts
	Processed int
	Skipped   []FileError
	Started   time.Time
	Elapsed   time.Duration
}

// Entries returns the number of directory entries the run visited.
func (r *Result) Entries() int {
	return r.Processed + len(r.Skipped)
}

// ProgressFunc is called after each directory entry has been handled.
type ProgressFunc func(done, total int)

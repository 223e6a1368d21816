package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Model produces a score vector for a preprocessed image.
type Model interface {
	Predict(ctx context.Context, input Tensor) ([]float32, error)
	Close() error
}

// ModelConfig wraps the model and preprocessing settings.
type ModelConfig struct {
	ImageSize int    `toml:"image_size,omitempty"`
	Layout    Layout `toml:"input_layout,omitempty"`
	Resample  string `toml:"resample,omitempty"`
}

// OrtModel runs an ONNX classification model through ONNX Runtime.
type OrtModel struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	mu      sync.Mutex
}

// LoadOrtModel opens an ONNX model whose input matches inputShape. The
// runtime environment must already be initialized.
func LoadOrtModel(path string, inputShape []int64) (*OrtModel, error) {
	if !ort.IsInitialized() {
		return nil, errors.New("onnx runtime is not initialized")
	}
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("read model input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s has no inputs or outputs", filepath.Base(path))
	}
	if err := checkInputShape(inputs[0].Dimensions, inputShape); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(inputShape...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](bindDims(outputs[0].Dimensions))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()

	session, err := ort.NewAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor},
		opts)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &OrtModel{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// Predict copies input into the session, runs it and returns a copy of the
// first output.
func (m *OrtModel) Predict(ctx context.Context, input Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, errors.New("model is closed")
	}
	dst := m.input.GetData()
	if len(dst) != len(input.Data) {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input.Data), len(dst))
	}
	copy(dst, input.Data)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	out := m.output.GetData()
	scores := make([]float32, len(out))
	copy(scores, out)
	return scores, nil
}

// Close releases the session and its tensors.
func (m *OrtModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	if m.session != nil {
		errs = append(errs, m.session.Destroy())
		m.session = nil
	}
	if m.input != nil {
		errs = append(errs, m.input.Destroy())
		m.input = nil
	}
	if m.output != nil {
		errs = append(errs, m.output.Destroy())
		m.output = nil
	}
	return errors.Join(errs...)
}

// bindDims replaces dynamic (non-positive) dimensions with 1.
func bindDims(dims ort.Shape) ort.Shape {
	out := make(ort.Shape, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		out[i] = d
	}
	return out
}

func checkInputShape(model ort.Shape, want []int64) error {
	if len(model) != len(want) {
		return fmt.Errorf("model input has rank %d, expected shape %v", len(model), want)
	}
	for i, d := range model {
		if d > 0 && d != want[i] {
			return fmt.Errorf("model input shape %v does not match %v; check input_layout and image_size", []int64(model), want)
		}
	}
	return nil
}

// Argmax returns the index of the largest score. Ties resolve to the lowest
// index and the first NaN wins outright; an empty vector returns -1.
func Argmax(scores []float32) int {
	best := -1
	for i, v := range scores {
		if math.IsNaN(float64(v)) {
			return i
		}
		if best < 0 || v > scores[best] {
			best = i
		}
	}
	return best
}

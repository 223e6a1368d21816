package classifier

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// colorStep spaces the red channel of generated images so a solid image of
// class i has red value i*colorStep.
const colorStep = 40

// solidModel predicts the class encoded in the red channel of the first pixel.
type solidModel struct {
	classes int
	calls   int
	err     error
}

func (m *solidModel) Predict(_ context.Context, input Tensor) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	idx := int(math.Round(float64(input.Data[0]) * 255 / colorStep))
	scores := make([]float32, m.classes)
	if idx < len(scores) {
		scores[idx] = 0.9
	}
	return scores, nil
}

func (m *solidModel) Close() error { return nil }

// fixedModel always returns the same score vector.
type fixedModel struct {
	scores []float32
}

func (m *fixedModel) Predict(context.Context, Tensor) ([]float32, error) {
	return append([]float32(nil), m.scores...), nil
}

func (m *fixedModel) Close() error { return nil }

var errModelBroken = errors.New("model broken")

func writeSolidPNG(t *testing.T, path string, c color.Color, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// writeClassImage writes an image that solidModel predicts as class idx.
func writeClassImage(t *testing.T, dir, name string, idx int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writeSolidPNG(t, path, color.NRGBA{R: uint8(idx * colorStep), G: 10, B: 20, A: 255}, 31, 17)
	return path
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	pre, err := NewPreprocessor(ModelConfig{ImageSize: 32, Layout: LayoutNHWC, Resample: "catmullrom"})
	if err != nil {
		t.Fatalf("NewPreprocessor() error = %v", err)
	}
	svc, err := NewService(DefaultClassTable(), pre, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

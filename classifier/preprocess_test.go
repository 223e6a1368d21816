package classifier

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPreprocessor(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ModelConfig
		shape   []int64
		wantErr bool
	}{
		{"defaults nhwc", ModelConfig{Layout: LayoutNHWC, Resample: "catmullrom"}, []int64{1, 224, 224, 3}, false},
		{"nchw upper case", ModelConfig{ImageSize: 64, Layout: "NCHW", Resample: "Lanczos"}, []int64{1, 3, 64, 64}, false},
		{"unknown layout", ModelConfig{Layout: "hwc", Resample: "linear"}, nil, true},
		{"unknown filter", ModelConfig{Layout: LayoutNHWC, Resample: "sinc"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre, err := NewPreprocessor(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := pre.Shape()
			if len(got) != len(tt.shape) {
				t.Fatalf("Shape() = %v, want %v", got, tt.shape)
			}
			for i := range got {
				if got[i] != tt.shape[i] {
					t.Fatalf("Shape() = %v, want %v", got, tt.shape)
				}
			}
		})
	}
}

func TestPreprocessor_TensorValues(t *testing.T) {
	pre, err := NewPreprocessor(ModelConfig{Layout: LayoutNHWC, Resample: "catmullrom"})
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewNRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			src.Set(x, y, color.NRGBA{R: 255, G: 51, B: 0, A: 255})
		}
	}

	tensor := pre.Tensor(src)
	if want := 224 * 224 * 3; len(tensor.Data) != want {
		t.Fatalf("len(Data) = %d, want %d", len(tensor.Data), want)
	}
	for i, v := range tensor.Data {
		if v < 0 || v > 1 {
			t.Fatalf("Data[%d] = %v outside [0,1]", i, v)
		}
	}
	if tensor.Data[0] != 1 || tensor.Data[1] != 0.2 || tensor.Data[2] != 0 {
		t.Errorf("first pixel = %v, want [1 0.2 0]", tensor.Data[:3])
	}
}

func TestPreprocessor_NCHWPlanes(t *testing.T) {
	pre, err := NewPreprocessor(ModelConfig{ImageSize: 8, Layout: LayoutNCHW, Resample: "nearest"})
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.NRGBA{R: 255, G: 0, B: 255, A: 255})
		}
	}
	tensor := pre.Tensor(src)
	plane := 64
	if tensor.Data[0] != 1 || tensor.Data[plane] != 0 || tensor.Data[2*plane] != 1 {
		t.Errorf("plane starts = %v %v %v, want 1 0 1", tensor.Data[0], tensor.Data[plane], tensor.Data[2*plane])
	}
}

func TestPreprocessor_DropsAlpha(t *testing.T) {
	pre, err := NewPreprocessor(ModelConfig{ImageSize: 4, Layout: LayoutNHWC, Resample: "nearest"})
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255 // red, fully transparent
	}
	tensor := pre.Tensor(src)
	if tensor.Data[0] != 1 {
		t.Errorf("red channel = %v, want 1 after dropping alpha", tensor.Data[0])
	}
}

func TestPreprocessor_Load(t *testing.T) {
	dir := t.TempDir()
	pre, err := NewPreprocessor(ModelConfig{ImageSize: 16, Layout: LayoutNHWC, Resample: "linear"})
	if err != nil {
		t.Fatal(err)
	}

	good := filepath.Join(dir, "good.png")
	writeSolidPNG(t, good, color.NRGBA{R: 0, G: 255, B: 0, A: 255}, 5, 9)
	tensor, err := pre.Load(good)
	if err != nil {
		t.Fatalf("Load(good) error = %v", err)
	}
	if tensor.Data[1] != 1 {
		t.Errorf("green = %v, want 1", tensor.Data[1])
	}

	corrupt := filepath.Join(dir, "corrupt.jpg")
	if err := os.WriteFile(corrupt, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := pre.Load(corrupt); err == nil {
		t.Error("Load(corrupt) should fail")
	}
	if _, err := pre.Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

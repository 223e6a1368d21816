package classifier

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultImageSize is the square input edge expected by the model.
const DefaultImageSize = 224

var resampleFilters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// ResampleFilter resolves a filter name from the config.
func ResampleFilter(name string) (imaging.ResampleFilter, error) {
	f, ok := resampleFilters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", name)
	}
	return f, nil
}

// Preprocessor turns an image file into a model input tensor.
type Preprocessor struct {
	Size   int
	Layout Layout
	Filter imaging.ResampleFilter
}

// NewPreprocessor returns a preprocessor for the given config.
func NewPreprocessor(cfg ModelConfig) (*Preprocessor, error) {
	filter, err := ResampleFilter(cfg.Resample)
	if err != nil {
		return nil, err
	}
	layout := Layout(strings.ToLower(string(cfg.Layout)))
	switch layout {
	case LayoutNHWC, LayoutNCHW:
	default:
		return nil, fmt.Errorf("unknown input layout %q", cfg.Layout)
	}
	size := cfg.ImageSize
	if size <= 0 {
		size = DefaultImageSize
	}
	return &Preprocessor{Size: size, Layout: layout, Filter: filter}, nil
}

// Shape returns the input tensor shape for a batch of one.
func (p *Preprocessor) Shape() []int64 {
	s := int64(p.Size)
	if p.Layout == LayoutNCHW {
		return []int64{1, 3, s, s}
	}
	return []int64{1, s, s, 3}
}

// Load opens path, decodes it and converts it to a tensor.
func (p *Preprocessor) Load(path string) (Tensor, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Tensor{}, fmt.Errorf("open image: %w", err)
	}
	if img.Bounds().Empty() {
		return Tensor{}, fmt.Errorf("image has no pixels")
	}
	return p.Tensor(img), nil
}

// Tensor drops alpha, stretches img to Size×Size and scales every channel
// to value/255.
func (p *Preprocessor) Tensor(img image.Image) Tensor {
	rgb := imaging.Clone(img)
	for i := 3; i < len(rgb.Pix); i += 4 {
		rgb.Pix[i] = 0xff
	}
	resized := imaging.Resize(rgb, p.Size, p.Size, p.Filter)

	plane := p.Size * p.Size
	out := make([]float32, 3*plane)
	for y := 0; y < p.Size; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < p.Size; x++ {
			px := row[x*4 : x*4+3]
			pixel := y*p.Size + x
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255.0
				if p.Layout == LayoutNCHW {
					out[c*plane+pixel] = v
				} else {
					out[pixel*3+c] = v
				}
			}
		}
	}
	return Tensor{Shape: p.Shape(), Data: out}
}

package service

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/disintegration/imaging"
)

// Segmenter 生成前景/背景分割掩码
type Segmenter interface {
	Name() string
	Segment(ctx context.Context, img image.Image) ([]model.Segment, error)
}

// NewSegmenter 按配置选择分割后端
func NewSegmenter(cfg *config.SegmenterConfig) (Segmenter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "luminance":
		return NewLuminanceSegmenter(cfg), nil
	case "grabcut":
		return newGrabCutSegmenter(cfg)
	default:
		return nil, fmt.Errorf("unknown segmenter backend %q", cfg.Backend)
	}
}

// FitForSegmentation 长边超过 maxDim 时按比例缩小
func FitForSegmentation(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// LuminanceSegmenter 适用于浅色纯背景的产品图：与背景亮度差越大，前景置信度越高
type LuminanceSegmenter struct {
	background float64
	spread     float64
}

func NewLuminanceSegmenter(cfg *config.SegmenterConfig) *LuminanceSegmenter {
	spread := cfg.Spread
	if spread <= 0 {
		spread = 48
	}
	return &LuminanceSegmenter{
		background: cfg.BackgroundLuminance,
		spread:     spread,
	}
}

func (s *LuminanceSegmenter) Name() string { return "luminance" }

func (s *LuminanceSegmenter) Segment(ctx context.Context, img image.Image) ([]model.Segment, error) {
	src := toNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	conf := make([]float32, w*h)

	for y := 0; y < h; y++ {
		if y%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			if p[3] == 0 {
				continue
			}
			lum := 0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])
			c := math.Abs(lum-s.background) / s.spread
			conf[y*w+x] = float32(math.Min(c, 1))
		}
	}

	return []model.Segment{{Label: "foreground", Mask: conf}}, nil
}

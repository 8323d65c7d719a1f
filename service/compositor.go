package service

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
)

// MaskCompositor 将分割掩码合成为透明背景图
type MaskCompositor struct {
	threshold      float64
	excluded       map[string]struct{}
	blurRadius     float64
	edgeCutoff     uint8
	softBlurRadius float64
}

func NewMaskCompositor(cfg *config.CompositorConfig) *MaskCompositor {
	excluded := make(map[string]struct{}, len(cfg.ExcludedLabels))
	for _, label := range cfg.ExcludedLabels {
		excluded[normalizeLabel(label)] = struct{}{}
	}
	return &MaskCompositor{
		threshold:      cfg.Threshold,
		excluded:       excluded,
		blurRadius:     cfg.BlurRadius,
		edgeCutoff:     cfg.EdgeCutoff,
		softBlurRadius: cfg.SoftBlurRadius,
	}
}

// IsExcluded 判断标签是否属于背景类
func (mc *MaskCompositor) IsExcluded(label string) bool {
	_, ok := mc.excluded[normalizeLabel(label)]
	return ok
}

// BuildMask 生成二值掩码：任一非背景类别置信度超过阈值即为前景(255)
func (mc *MaskCompositor) BuildMask(segments []model.Segment, width, height int) (*image.Gray, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrMalformedMask, width, height)
	}

	n := width * height
	for i, seg := range segments {
		if len(seg.Mask) != n {
			return nil, fmt.Errorf("%w: segment %d (%s) has %d values, want %d",
				ErrMalformedMask, i, seg.Label, len(seg.Mask), n)
		}
		for j, v := range seg.Mask {
			if math.IsNaN(float64(v)) || v < 0 || v > 1 {
				return nil, fmt.Errorf("%w: segment %d (%s) value %v at %d outside [0,1]",
					ErrMalformedMask, i, seg.Label, v, j)
			}
		}
	}

	mask := image.NewGray(image.Rect(0, 0, width, height))
	for _, seg := range segments {
		if mc.IsExcluded(seg.Label) {
			continue
		}
		for i, v := range seg.Mask {
			if float64(v) > mc.threshold {
				mask.Pix[i] = 255
			}
		}
	}
	return mask, nil
}

// Smooth 模糊后重新二值化，再做一次不重新二值化的轻度模糊柔化边缘
func (mc *MaskCompositor) Smooth(mask *image.Gray) *image.Gray {
	smoothed := gaussianBlur(mask, mc.blurRadius)
	for i, v := range smoothed.Pix {
		if v > mc.edgeCutoff {
			smoothed.Pix[i] = 255
		} else {
			smoothed.Pix[i] = 0
		}
	}
	if mc.softBlurRadius > 0 {
		smoothed = gaussianBlur(smoothed, mc.softBlurRadius)
	}
	return smoothed
}

// Apply destination-in 合成：保留源 RGB，alpha 乘以掩码
func (mc *MaskCompositor) Apply(img image.Image, mask *image.Gray) (*image.NRGBA, error) {
	out := toNRGBA(img)
	b := out.Bounds()
	if b.Dx() != mask.Rect.Dx() || b.Dy() != mask.Rect.Dy() {
		return nil, fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			ErrMalformedMask, mask.Rect.Dx(), mask.Rect.Dy(), b.Dx(), b.Dy())
	}

	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+b.Dx()*4]
		maskRow := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x, m := range maskRow {
			a := &row[x*4+3]
			*a = uint8((uint32(*a)*uint32(m) + 127) / 255)
		}
	}
	return out, nil
}

// Composite 完整流程：掩码 -> 平滑 -> 合成 -> PNG
func (mc *MaskCompositor) Composite(img image.Image, segments []model.Segment) ([]byte, error) {
	b := img.Bounds()
	mask, err := mc.BuildMask(segments, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	result, err := mc.Apply(img, mc.Smooth(mask))
	if err != nil {
		return nil, err
	}
	return EncodePNG(result)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

package service

import (
	"fmt"
	"image"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Upscaler 插值放大 + 固定 3x3 锐化。不是学习型超分模型。
type Upscaler struct {
	allowed         map[int]bool
	sharpenAmount   float64
	jpegQuality     int
	maxOutputPixels int64
}

func NewUpscaler(cfg *config.UpscalerConfig) *Upscaler {
	allowed := make(map[int]bool, len(cfg.AllowedScales))
	for _, s := range cfg.AllowedScales {
		if s >= 1 {
			allowed[s] = true
		}
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	return &Upscaler{
		allowed:         allowed,
		sharpenAmount:   cfg.SharpenAmount,
		jpegQuality:     quality,
		maxOutputPixels: cfg.MaxOutputPixels,
	}
}

// ValidateScale 校验放大倍数
func (u *Upscaler) ValidateScale(scale int) error {
	if scale < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	if len(u.allowed) > 0 && !u.allowed[scale] {
		return fmt.Errorf("%w: %d is not one of the allowed factors", ErrInvalidScale, scale)
	}
	return nil
}

// Upscale 输出尺寸恰为 (W*scale)x(H*scale)
func (u *Upscaler) Upscale(img image.Image, scale int) (*image.NRGBA, error) {
	if err := u.ValidateScale(scale); err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx()*scale, b.Dy()*scale
	if u.maxOutputPixels > 0 && int64(w)*int64(h) > u.maxOutputPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrOutputTooLarge, w, h, u.maxOutputPixels)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return Sharpen(dst, u.sharpenAmount), nil
}

// UpscaleJPEG 放大并编码为 JPEG
func (u *Upscaler) UpscaleJPEG(img image.Image, scale int) ([]byte, error) {
	out, err := u.Upscale(img, scale)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(out, u.jpegQuality)
}

// Sharpen 中心权重 1+4a、四邻域 -a，只处理内部像素，边框保持原值
func Sharpen(img *image.NRGBA, amount float64) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if amount == 0 || w < 3 || h < 3 {
		return img
	}

	kernel := [9]float64{
		0, -amount, 0,
		-amount, 1 + 4*amount, -amount,
		0, -amount, 0,
	}
	out := imaging.Convolve3x3(img, kernel, nil)

	// 还原四条边
	for x := 0; x < w; x++ {
		copyPixel(out, img, x, 0)
		copyPixel(out, img, x, h-1)
	}
	for y := 1; y < h-1; y++ {
		copyPixel(out, img, 0, y)
		copyPixel(out, img, w-1, y)
	}
	return out
}

func copyPixel(dst, src *image.NRGBA, x, y int) {
	d := dst.PixOffset(dst.Rect.Min.X+x, dst.Rect.Min.Y+y)
	s := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
	copy(dst.Pix[d:d+4], src.Pix[s:s+4])
}

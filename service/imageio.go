package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels 未配置时解码允许的最大像素数
const DefaultMaxPixels int64 = 40_000_000

// DecodeImage 解码上传的图片，按 EXIF 方向自动旋转
func DecodeImage(data []byte) (image.Image, error) {
	return DecodeImageLimit(data, DefaultMaxPixels)
}

// DecodeImageLimit 先读取图片头部尺寸，超过 maxPixels 的图片不做完整解码
func DecodeImageLimit(data []byte, maxPixels int64) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image header: %v", ErrInvalidType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidType)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", ErrInvalidType, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidType)
	}
	return img, nil
}

// EncodePNG 编码为 PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG 按指定质量编码为 JPEG，透明像素落在白底上
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// toNRGBA 复制为以 (0,0) 为原点的 NRGBA
func toNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

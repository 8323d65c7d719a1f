package service

import (
	"image"

	"github.com/disintegration/imaging"
)

// blurWithImaging 纯 Go 高斯模糊，边缘像素按最近值延展
func blurWithImaging(mask *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return cloneGray(mask)
	}
	blurred := imaging.Blur(mask, sigma)
	out := image.NewGray(image.Rect(0, 0, mask.Rect.Dx(), mask.Rect.Dy()))
	for i := range out.Pix {
		out.Pix[i] = blurred.Pix[i*4]
	}
	return out
}

func cloneGray(mask *image.Gray) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, mask.Rect.Dx(), mask.Rect.Dy()))
	for y := 0; y < out.Rect.Dy(); y++ {
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], mask.Pix[y*mask.Stride:y*mask.Stride+out.Stride])
	}
	return out
}

//go:build gocv

package service

import (
	"image"

	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// gaussianBlur OpenCV 实现，失败时退回纯 Go 实现
func gaussianBlur(mask *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return cloneGray(mask)
	}

	src, err := gocv.ImageGrayToMatGray(cloneGray(mask))
	if err != nil {
		utils.Logger.Warn("gocv mask conversion failed, using imaging blur", zap.Error(err))
		return blurWithImaging(mask, sigma)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Point{}, sigma, sigma, gocv.BorderReplicate)

	img, err := dst.ToImage()
	if err != nil {
		utils.Logger.Warn("gocv blur output conversion failed, using imaging blur", zap.Error(err))
		return blurWithImaging(mask, sigma)
	}
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	out := image.NewGray(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

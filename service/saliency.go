//go:build gocv

package service

import (
	"image"

	"gocv.io/x/gocv"
)

// GrabCut 掩码取值
const (
	gcBackground         uint8 = 0
	gcProbableBackground uint8 = 2
	gcProbableForeground uint8 = 3
)

// saliencyMap 梯度幅值模糊后做 Otsu 二值化，亮区域视为主体
func saliencyMap(mat gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	gradX := gocv.NewMat()
	defer gradX.Close()
	gradY := gocv.NewMat()
	defer gradY.Close()
	gocv.Sobel(gray, &gradX, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gradY, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderDefault)

	absX := gocv.NewMat()
	defer absX.Close()
	absY := gocv.NewMat()
	defer absY.Close()
	gocv.ConvertScaleAbs(gradX, &absX, 1, 0)
	gocv.ConvertScaleAbs(gradY, &absY, 1, 0)

	magnitude := gocv.NewMat()
	defer magnitude.Close()
	gocv.AddWeighted(absX, 0.5, absY, 0.5, 0, &magnitude)
	gocv.GaussianBlur(magnitude, &magnitude, image.Point{X: 21, Y: 21}, 0, 0, gocv.BorderDefault)

	out := gocv.NewMat()
	gocv.Threshold(magnitude, &out, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return out
}

// salientRect 最大显著轮廓的外接矩形，四周留 5% 余量；找不到轮廓时返回 fallback
func salientRect(saliency gocv.Mat, fallback image.Rectangle) image.Rectangle {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 21, Y: 21})
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(saliency, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best image.Rectangle
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			bestArea = area
			best = gocv.BoundingRect(contours.At(i))
		}
	}
	if bestArea == 0 {
		return fallback
	}

	pad := best.Dx() / 20
	bounds := image.Rect(0, 0, saliency.Cols(), saliency.Rows())
	best = image.Rect(best.Min.X-pad, best.Min.Y-pad, best.Max.X+pad, best.Max.Y+pad).Intersect(bounds)
	// GrabCut 要求矩形外至少有背景像素
	if best.Eq(bounds) || best.Dx() < 2 || best.Dy() < 2 {
		return fallback
	}
	return best
}

// saliencySeed 生成 GrabCut 初始掩码：边框为背景，显著区域为可能前景，其余为可能背景。
// 没有任何可能前景像素时返回 false。
func saliencySeed(saliency gocv.Mat, border int) (gocv.Mat, bool) {
	rows, cols := saliency.Rows(), saliency.Cols()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 11, Y: 11})
	defer kernel.Close()
	grown := gocv.NewMat()
	defer grown.Close()
	gocv.Dilate(saliency, &grown, kernel)

	seed := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	foreground := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := gcProbableBackground
			switch {
			case x < border || x >= cols-border || y < border || y >= rows-border:
				v = gcBackground
			case grown.GetUCharAt(y, x) > 128:
				v = gcProbableForeground
				foreground++
			}
			seed.SetUCharAt(y, x, v)
		}
	}
	return seed, foreground > 0
}

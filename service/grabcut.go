//go:build gocv

package service

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// GrabCutSegmenter 基于 OpenCV GrabCut 的本地前景分割
type GrabCutSegmenter struct {
	iterations int
	borderSize int
}

func newGrabCutSegmenter(cfg *config.SegmenterConfig) (Segmenter, error) {
	iterations := cfg.GrabCutIterations
	if iterations <= 0 {
		iterations = 5
	}
	return &GrabCutSegmenter{
		iterations: iterations,
		borderSize: cfg.BorderSize,
	}, nil
}

func (s *GrabCutSegmenter) Name() string { return "grabcut" }

// Segment 先按场景复杂度选择初始化方式：
// 简单场景用边框矩形，中等场景用显著区域外接矩形，复杂场景用显著性种子掩码并追加一轮细化。
func (s *GrabCutSegmenter) Segment(ctx context.Context, img image.Image) ([]model.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	width := mat.Cols()
	height := mat.Rows()
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("%w: image %dx%d too small for grabcut", ErrMalformedMask, width, height)
	}

	border := s.borderSize
	if border < 1 || border*2 >= min(width, height) {
		border = max(1, min(width, height)/20)
	}
	borderRect := image.Rect(border, border, width-border, height-border)

	scene := analyzeScene(mat)
	iterations := scene.iterations(s.iterations)

	mask := gocv.NewMat()
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	mode := "rect"
	switch scene.Level {
	case sceneSimple:
		gocv.GrabCut(mat, &mask, borderRect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)
	default:
		saliency := saliencyMap(mat)
		defer saliency.Close()

		seeded := false
		if scene.Level == sceneComplex {
			if seed, ok := saliencySeed(saliency, border); ok {
				mask.Close()
				mask = seed
				seeded = true
			} else {
				seed.Close()
			}
		}
		if seeded {
			mode = "seed"
			gocv.GrabCut(mat, &mask, image.Rectangle{}, &bgdModel, &fgdModel, iterations, gocv.GCInitWithMask)
		} else {
			mode = "salient-rect"
			rect := salientRect(saliency, borderRect)
			gocv.GrabCut(mat, &mask, rect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gocv.GrabCut(mat, &mask, image.Rectangle{}, &bgdModel, &fgdModel, 2, gocv.GCInitWithMask)
	}

	conf := foregroundConfidence(mask, scene.kernelSize())

	utils.Logger.Debug("grabcut segmentation finished",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("scene", string(scene.Level)),
		zap.Float64("edge_density", scene.EdgeDensity),
		zap.Float64("color_spread", scene.ColorSpread),
		zap.String("init", mode),
		zap.Int("iterations", iterations),
		zap.Duration("duration", time.Since(startTime)))

	return []model.Segment{{Label: "foreground", Mask: conf}}, nil
}

// foregroundConfidence 把 GrabCut 掩码中的前景与可能前景(取值 1、3，即奇数)转成 0/1 置信度，
// 中间经过一次开运算去噪点和一次闭运算补空洞
func foregroundConfidence(mask gocv.Mat, kernelSize int) []float32 {
	rows, cols := mask.Rows(), mask.Cols()

	binary := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	defer binary.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var v uint8
			if mask.GetUCharAt(y, x)&1 == 1 {
				v = 255
			}
			binary.SetUCharAt(y, x, v)
		}
	}

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()
	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(binary, &opened, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(opened, &binary, gocv.MorphClose, kernel)

	conf := make([]float32, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if binary.GetUCharAt(y, x) > 0 {
				conf[y*cols+x] = 1
			}
		}
	}
	return conf
}

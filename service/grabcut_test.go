//go:build gocv

package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"gocv.io/x/gocv"
)

func mustMat(t *testing.T, img image.Image) gocv.Mat {
	t.Helper()
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	t.Cleanup(func() { _ = mat.Close() })
	return mat
}

func TestAnalyzeSceneLevels(t *testing.T) {
	flat := analyzeScene(mustMat(t, solidImage(64, 64, color.NRGBA{R: 90, G: 120, B: 200, A: 255})))
	if flat.Level != sceneSimple {
		t.Fatalf("solid image classified as %s (%+v)", flat.Level, flat)
	}
	if flat.iterations(5) != 3 || flat.kernelSize() != 3 {
		t.Fatalf("simple scene: iterations %d kernel %d", flat.iterations(5), flat.kernelSize())
	}

	checker := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := color.NRGBA{A: 255}
			if (x/2+y/2)%2 == 0 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			checker.SetNRGBA(x, y, c)
		}
	}
	busy := analyzeScene(mustMat(t, checker))
	if busy.Level != sceneComplex {
		t.Fatalf("checkerboard classified as %s (%+v)", busy.Level, busy)
	}
	if busy.iterations(5) != 7 || busy.kernelSize() != 5 {
		t.Fatalf("complex scene: iterations %d kernel %d", busy.iterations(5), busy.kernelSize())
	}

	if (sceneStats{Level: sceneMedium}).iterations(5) != 5 {
		t.Fatal("medium scene keeps the configured iterations")
	}
}

func TestForegroundConfidence(t *testing.T) {
	mask := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV8U)
	defer mask.Close()
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := gcProbableBackground
			if x >= 5 && x < 15 && y >= 5 && y < 15 {
				v = gcProbableForeground
			}
			mask.SetUCharAt(y, x, v)
		}
	}
	mask.SetUCharAt(1, 1, 1) // 孤立的确定前景点

	conf := foregroundConfidence(mask, 3)
	if len(conf) != 400 {
		t.Fatalf("len = %d", len(conf))
	}
	if conf[10*20+10] != 1 {
		t.Fatal("center of the foreground block should survive")
	}
	if conf[1*20+1] != 0 {
		t.Fatal("isolated pixel should be removed by opening")
	}
	if conf[0] != 0 || conf[18*20+18] != 0 {
		t.Fatal("background should stay zero")
	}
}

func TestGrabCutSegmenter(t *testing.T) {
	s, err := newGrabCutSegmenter(&config.SegmenterConfig{GrabCutIterations: 3, BorderSize: 4})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Name() != "grabcut" {
		t.Fatalf("name = %q", s.Name())
	}

	img := solidImage(64, 64, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	for y := 20; y < 44; y++ {
		for x := 20; x < 44; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 180, G: 20, B: 30, A: 255})
		}
	}
	segs, err := s.Segment(context.Background(), img)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(segs) != 1 || segs[0].Label != "foreground" || len(segs[0].Mask) != 64*64 {
		t.Fatalf("unexpected segments %+v", segs)
	}
	if segs[0].Mask[0] != 0 {
		t.Fatal("corner inside the border must be background")
	}
	if segs[0].Mask[32*64+32] != 1 {
		t.Fatal("center of the square should be foreground")
	}

	if _, err := s.Segment(context.Background(), solidImage(2, 2, color.NRGBA{A: 255})); !errors.Is(err, ErrMalformedMask) {
		t.Fatalf("expected ErrMalformedMask, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Segment(ctx, img); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

//go:build !gocv

package service

import (
	"errors"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
)

func newGrabCutSegmenter(*config.SegmenterConfig) (Segmenter, error) {
	return nil, errors.New("grabcut segmenter requires building with -tags gocv")
}

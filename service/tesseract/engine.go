// Package tesseract provides the local Tesseract OCR engine. It links against
// libtesseract through gosseract and therefore requires cgo.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/otiai10/gosseract/v2"
)

// Engine implements service.OCREngine with one gosseract client per call.
type Engine struct {
	clientFactory func() *gosseract.Client
}

func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs Tesseract on a single image. gosseract is not context aware,
// so cancellation is only observed before the call starts.
func (e *Engine) Recognize(ctx context.Context, in service.OCRInput) (service.OCROutput, error) {
	if err := ctx.Err(); err != nil {
		return service.OCROutput{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	if in.Language != "" {
		if err := c.SetLanguage(in.Language); err != nil {
			return service.OCROutput{}, fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return service.OCROutput{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return service.OCROutput{}, fmt.Errorf("recognize text: %w", err)
	}

	return service.OCROutput{
		Text:       strings.TrimSpace(text),
		Confidence: averageConfidence(c),
	}, nil
}

func averageConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100
	}
	return sum / float64(len(boxes))
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionAPI rekognition.Client 的子集，便于测试替换
type RekognitionAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// RekognitionEngine AWS Rekognition DetectText。该接口不接受语言参数，仅支持拉丁字符。
type RekognitionEngine struct {
	client RekognitionAPI
}

func NewRekognitionEngine(client RekognitionAPI) *RekognitionEngine {
	return &RekognitionEngine{client: client}
}

func (e *RekognitionEngine) Name() string { return "rekognition" }

func (e *RekognitionEngine) Recognize(ctx context.Context, in OCRInput) (OCROutput, error) {
	if e.client == nil {
		return OCROutput{}, fmt.Errorf("rekognition client not initialized")
	}

	result, err := e.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: in.Image},
	})
	if err != nil {
		return OCROutput{}, fmt.Errorf("detect text: %w", err)
	}

	var lines []string
	var sum float64
	for _, d := range result.TextDetections {
		if d.Type != types.TextTypesLine || d.DetectedText == nil {
			continue
		}
		lines = append(lines, *d.DetectedText)
		if d.Confidence != nil {
			sum += float64(*d.Confidence) / 100
		}
	}

	out := OCROutput{Text: strings.Join(lines, "\n")}
	if len(lines) > 0 {
		out.Confidence = sum / float64(len(lines))
	}
	return out, nil
}

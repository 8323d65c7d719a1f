package service

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type fakeEngine struct {
	in  OCRInput
	out OCROutput
	err error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, in OCRInput) (OCROutput, error) {
	f.in = in
	return f.out, f.err
}

func TestOCRServiceExtract(t *testing.T) {
	engine := &fakeEngine{out: OCROutput{Text: "hello", Confidence: 0.9}}
	svc := NewOCRService(&config.Default().OCR, engine)

	res, err := svc.Extract(context.Background(), solidImage(4, 4, color.NRGBA{A: 255}), "abc", "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Text != "hello" || res.Language != "eng" || res.Engine != "fake" || res.MD5 != "abc" {
		t.Fatalf("unexpected result %+v", res)
	}
	if engine.in.Language != "eng" || len(engine.in.Image) == 0 {
		t.Fatalf("unexpected engine input %+v", engine.in)
	}
}

func TestOCRServiceLanguage(t *testing.T) {
	svc := NewOCRService(&config.Default().OCR, &fakeEngine{})
	if lang, err := svc.ResolveLanguage("SPA"); err != nil || lang != "spa" {
		t.Fatalf("got %q, %v", lang, err)
	}
	if _, err := svc.ResolveLanguage("klingon"); !errors.Is(err, ErrUnsupportedLang) {
		t.Fatalf("expected ErrUnsupportedLang, got %v", err)
	}
}

func TestOCRServiceEngineError(t *testing.T) {
	boom := errors.New("engine crashed")
	svc := NewOCRService(&config.Default().OCR, &fakeEngine{err: boom})
	if _, err := svc.Extract(context.Background(), solidImage(1, 1, color.NRGBA{A: 255}), "x", "eng"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped engine error, got %v", err)
	}
}

type fakeRekognition struct {
	out *rekognition.DetectTextOutput
}

func (f *fakeRekognition) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	return f.out, nil
}

func TestRekognitionEngine(t *testing.T) {
	client := &fakeRekognition{out: &rekognition.DetectTextOutput{
		TextDetections: []types.TextDetection{
			{Type: types.TextTypesLine, DetectedText: aws.String("HELLO"), Confidence: aws.Float32(90)},
			{Type: types.TextTypesWord, DetectedText: aws.String("HELLO"), Confidence: aws.Float32(10)},
			{Type: types.TextTypesLine, DetectedText: aws.String("WORLD"), Confidence: aws.Float32(70)},
		},
	}}
	out, err := NewRekognitionEngine(client).Recognize(context.Background(), OCRInput{Image: []byte{1}})
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if out.Text != "HELLO\nWORLD" {
		t.Fatalf("text = %q", out.Text)
	}
	if out.Confidence < 0.79 || out.Confidence > 0.81 {
		t.Fatalf("confidence = %v, want 0.8", out.Confidence)
	}
}

package service

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
)

func TestBuildQRPayload(t *testing.T) {
	tests := []struct {
		name string
		req  model.QRRequest
		want string
		err  bool
	}{
		{"url", model.QRRequest{Type: "url", Value: "https://example.com"}, "https://example.com", false},
		{"bare scheme", model.QRRequest{Type: "url", Value: "https://"}, "", true},
		{"empty url", model.QRRequest{Type: "url"}, "", true},
		{"text", model.QRRequest{Type: "text", Value: "hello"}, "hello", false},
		{"sms", model.QRRequest{Type: "sms", Phone: "+15551234", Message: "hi"}, "smsto:+15551234:hi", false},
		{"sms without message", model.QRRequest{Type: "sms", Phone: "+15551234"}, "", true},
		{"phone", model.QRRequest{Type: "phone", Phone: "+15551234"}, "tel:+15551234", false},
		{"phone missing", model.QRRequest{Type: "phone"}, "", true},
		{"unknown", model.QRRequest{Type: "wifi", Value: "x"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildQRPayload(tt.req)
			if tt.err {
				if !errors.Is(err, ErrInvalidOption) {
					t.Fatalf("expected ErrInvalidOption, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQREncodeDeterministic(t *testing.T) {
	enc := NewQREncoder(&config.Default().QRCode)
	opts, err := enc.Options(model.QRRequest{})
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	a, ct, err := enc.Encode("https://example.com", opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _, err := enc.Encode("https://example.com", opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same input produced different bytes")
	}

	img, err := DecodeImage(a)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	w := img.Bounds().Dx()
	if w < opts.Size+2*opts.Margin || w != img.Bounds().Dy() {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	r, g, bl, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Fatal("margin should be filled with the background color")
	}
}

func TestQREncodeSVG(t *testing.T) {
	enc := NewQREncoder(&config.Default().QRCode)
	opts, err := enc.Options(model.QRRequest{Format: "svg", Foreground: "#f00"})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	data, ct, err := enc.Encode("hello", opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	svg := string(data)
	if ct != "image/svg+xml" || !strings.HasPrefix(svg, "<svg") || !strings.Contains(svg, `fill="#ff0000"`) {
		t.Fatalf("unexpected svg output (%s): %.120s", ct, svg)
	}
}

func TestQROptionsValidation(t *testing.T) {
	enc := NewQREncoder(&config.Default().QRCode)
	negative := -1
	for _, req := range []model.QRRequest{
		{Foreground: "blue"},
		{Level: "ultra"},
		{Format: "gif"},
		{Margin: &negative},
		{Size: 5000},
	} {
		if _, err := enc.Options(req); !errors.Is(err, ErrInvalidOption) {
			t.Fatalf("%+v: expected ErrInvalidOption, got %v", req, err)
		}
	}

	zero := 0
	opts, err := enc.Options(model.QRRequest{Margin: &zero})
	if err != nil || opts.Margin != 0 {
		t.Fatalf("explicit zero margin should be kept, got %d, %v", opts.Margin, err)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#1a2B3c")
	if err != nil || c != (color.NRGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}) {
		t.Fatalf("got %v, %v", c, err)
	}
	c, err = ParseHexColor("fff")
	if err != nil || c != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("got %v, %v", c, err)
	}
	if _, err := ParseHexColor("#12345"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

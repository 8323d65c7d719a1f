package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
)

func TestUploadPolicyValidate(t *testing.T) {
	p := NewUploadPolicy(&config.UploadConfig{MaxSizeMB: 5, AcceptPattern: "image/*"})
	maxBytes := int64(5 * 1024 * 1024)

	tests := []struct {
		name        string
		contentType string
		size        int64
		want        error
	}{
		{"png", "image/png", 1024, nil},
		{"exactly max", "image/jpeg", maxBytes, nil},
		{"one byte over", "image/jpeg", maxBytes + 1, ErrTooLarge},
		{"text", "text/plain", 10, ErrInvalidType},
		{"empty", "image/png", 0, ErrEmptyFile},
		{"no content type", "", 10, ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Validate(tt.contentType, tt.size)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUploadPolicyMultiplePatterns(t *testing.T) {
	p := NewUploadPolicy(&config.UploadConfig{MaxSizeMB: 1, AcceptPattern: "image/png, application/pdf"})
	if !p.Accepts("application/pdf") || !p.Accepts("image/png") {
		t.Fatal("listed types should be accepted")
	}
	if p.Accepts("image/jpeg") {
		t.Fatal("image/jpeg is not listed")
	}
}

func TestMatchMIME(t *testing.T) {
	tests := []struct {
		pattern, contentType string
		want                 bool
	}{
		{"image/*", "image/png", true},
		{"image/*", "IMAGE/WebP", true},
		{"image/*", "image/png; charset=binary", true},
		{"image/*", "text/plain", false},
		{"image/*", "imagefoo/png", false},
		{"*/*", "text/plain", true},
		{"*", "application/octet-stream", true},
		{"image/png", "image/png", true},
		{"image/png", "image/jpeg", false},
	}
	for _, tt := range tests {
		if got := MatchMIME(tt.pattern, tt.contentType); got != tt.want {
			t.Errorf("MatchMIME(%q, %q) = %v, want %v", tt.pattern, tt.contentType, got, tt.want)
		}
	}
}

func TestPreviewURL(t *testing.T) {
	url := PreviewURL([]byte("abc"), "image/png")
	if !strings.HasPrefix(url, "data:image/png;base64,") || !strings.HasSuffix(url, "YWJj") {
		t.Fatalf("unexpected data url %q", url)
	}
}

package service

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
)

// UploadPolicy 上传校验：MIME 通配 + 大小上限
type UploadPolicy struct {
	patterns  []string
	maxSizeMB int64
	maxBytes  int64
	maxPixels int64
}

func NewUploadPolicy(cfg *config.UploadConfig) *UploadPolicy {
	pattern := cfg.AcceptPattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "image/*"
	}
	var patterns []string
	for _, p := range strings.Split(pattern, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &UploadPolicy{
		patterns:  patterns,
		maxSizeMB: cfg.MaxSizeMB,
		maxBytes:  cfg.MaxBytes(),
		maxPixels: cfg.MaxPixels,
	}
}

// MaxBytes 允许的最大字节数
func (p *UploadPolicy) MaxBytes() int64 {
	return p.maxBytes
}

// MaxPixels 解码允许的最大像素数
func (p *UploadPolicy) MaxPixels() int64 {
	if p.maxPixels <= 0 {
		return DefaultMaxPixels
	}
	return p.maxPixels
}

// Decode 按像素上限解码已通过校验的上传数据
func (p *UploadPolicy) Decode(data []byte) (image.Image, error) {
	return DecodeImageLimit(data, p.MaxPixels())
}

// Validate 校验声明的类型和大小，恰好等于上限时接受
func (p *UploadPolicy) Validate(contentType string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if !p.Accepts(contentType) {
		return fmt.Errorf("%w: %q is not accepted (%s)", ErrInvalidType, contentType, strings.Join(p.patterns, ","))
	}
	if size > p.maxBytes {
		return fmt.Errorf("%w: maximum size is %dMB", ErrTooLarge, p.maxSizeMB)
	}
	return nil
}

// Accepts 判断 MIME 类型是否匹配任一通配模式
func (p *UploadPolicy) Accepts(contentType string) bool {
	for _, pattern := range p.patterns {
		if MatchMIME(pattern, contentType) {
			return true
		}
	}
	return false
}

// MatchMIME 支持 "*", "*/*", "image/*" 与精确匹配，忽略参数和大小写
func MatchMIME(pattern, contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		return false
	}
	pattern = strings.ToLower(strings.TrimSpace(pattern))

	switch {
	case pattern == "*" || pattern == "*/*":
		return true
	case strings.HasSuffix(pattern, "/*"):
		return strings.HasPrefix(mediaType, strings.TrimSuffix(pattern, "*"))
	default:
		return mediaType == pattern
	}
}

// PreviewURL 生成可直接展示的 data URL
func PreviewURL(data []byte, contentType string) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

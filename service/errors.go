package service

import (
	"errors"
	"fmt"
)

var (
	// 输入校验错误，处理不会开始
	ErrEmptyFile       = errors.New("empty file")
	ErrInvalidType     = errors.New("invalid file type")
	ErrTooLarge        = errors.New("file too large")
	ErrInvalidScale    = errors.New("invalid upscale factor")
	ErrOutputTooLarge  = errors.New("output image too large")
	ErrInvalidOption   = errors.New("invalid option")
	ErrUnsupportedLang = errors.New("unsupported language")

	// 合成错误
	ErrNoSegments    = errors.New("segmentation produced no segments")
	ErrMalformedMask = errors.New("malformed segmentation mask")

	// 外部调用
	ErrUpstream      = errors.New("upstream service failed")
	ErrMissingAPIKey = errors.New("background removal api key not configured")
	ErrQueueFull     = errors.New("processing queue is full, try again later")
)

// APIError 远程接口非 2xx 响应，调用方不重试
type APIError struct {
	StatusCode int
	Title      string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote api returned %d: %s (%s)", e.StatusCode, e.Title, e.Code)
	}
	if e.Title != "" {
		return fmt.Sprintf("remote api returned %d: %s", e.StatusCode, e.Title)
	}
	return fmt.Sprintf("remote api returned %d", e.StatusCode)
}

// IsValidationError 判断是否属于输入校验类错误
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyFile, ErrInvalidType, ErrTooLarge, ErrInvalidScale,
		ErrOutputTooLarge, ErrInvalidOption, ErrUnsupportedLang,
		ErrNoSegments, ErrMalformedMask,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

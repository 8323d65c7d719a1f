package handler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"

	"github.com/DrMamtaSaini/pixflow-design-studio/middleware"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderContentMD5 源图 MD5，随二进制结果返回
const HeaderContentMD5 = "X-Content-MD5"

// Cache 结果缓存，nil 表示禁用
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, data []byte) error
	GetOCRResult(ctx context.Context, key string) (*model.OCRResult, error)
	SetOCRResult(ctx context.Context, key string, result *model.OCRResult) error
}

var _ Cache = (*service.RedisService)(nil)

// PingableCache 可探活的缓存后端
type PingableCache interface {
	Cache
	Ping(ctx context.Context) error
}

// ReachableCache 探活失败时返回 nil 接口值，处理器据此跳过缓存
func ReachableCache(ctx context.Context, c PingableCache) (Cache, error) {
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// uploadedImage 通过校验并解码的上传图片
type uploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
	MD5         string
	Image       image.Image
}

// readImage 读取 multipart 字段 "image"：先按声明的类型和大小校验，再解码
func readImage(c *gin.Context, policy *service.UploadPolicy) (*uploadedImage, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: missing form file \"image\"", service.ErrEmptyFile)
	}

	contentType := file.Header.Get("Content-Type")
	if err := policy.Validate(contentType, file.Size); err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, policy.MaxBytes()+1))
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	if err := policy.Validate(contentType, int64(len(data))); err != nil {
		return nil, err
	}

	img, err := policy.Decode(data)
	if err != nil {
		return nil, err
	}

	return &uploadedImage{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        data,
		MD5:         utils.BytesMD5(data),
		Image:       img,
	}, nil
}

// statusFor 错误到 HTTP 状态码
func statusFor(err error) int {
	var apiErr *service.APIError
	switch {
	case service.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, service.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr), errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError 按错误类型返回；5xx 只返回概要，细节写日志
func respondError(c *gin.Context, status int, message string, err error) {
	fields := []zap.Field{
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		utils.Logger.Error(message, fields...)
	} else {
		utils.Logger.Warn(message, fields...)
	}

	resp := model.ErrorResponse{Success: false, Message: message}
	if status < http.StatusInternalServerError || status == http.StatusBadGateway || status == http.StatusServiceUnavailable {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// fail 由错误推断状态码
func fail(c *gin.Context, message string, err error) {
	respondError(c, statusFor(err), message, err)
}

// sendAttachment 以附件形式返回二进制结果
func sendAttachment(c *gin.Context, filename, contentType, sourceMD5 string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if sourceMD5 != "" {
		c.Header(HeaderContentMD5, sourceMD5)
	}
	c.Data(http.StatusOK, contentType, data)
}

// acquireSlot 获取处理槽位，失败时已写入 503
func acquireSlot(c *gin.Context, limiter *service.Limiter) (func(), bool) {
	release, err := limiter.Acquire(c.Request.Context())
	if err != nil {
		fail(c, "服务繁忙，请稍后重试", err)
		return nil, false
	}
	return release, true
}

func cacheGet(ctx context.Context, cache Cache, key string) []byte {
	if cache == nil {
		return nil
	}
	data, err := cache.GetBytes(ctx, key)
	if err != nil {
		utils.Logger.Warn("failed to get cache", zap.String("cache_key", key), zap.Error(err))
		return nil
	}
	if data != nil {
		utils.Logger.Info("cache hit", zap.String("cache_key", key))
	}
	return data
}

func cacheSet(ctx context.Context, cache Cache, key string, data []byte) {
	if cache == nil {
		return
	}
	if err := cache.SetBytes(ctx, key, data); err != nil {
		utils.Logger.Warn("failed to set cache", zap.String("cache_key", key), zap.Error(err))
	}
}

func formBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.PostForm(key))
	return v
}

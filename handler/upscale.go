package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UpscaleHandler struct {
	policy   *service.UploadPolicy
	limiter  *service.Limiter
	upscaler *service.Upscaler
	cache    Cache
}

func NewUpscaleHandler(policy *service.UploadPolicy, limiter *service.Limiter, upscaler *service.Upscaler, cache Cache) *UpscaleHandler {
	return &UpscaleHandler{
		policy:   policy,
		limiter:  limiter,
		upscaler: upscaler,
		cache:    cache,
	}
}

// Upscale 放大图片，返回 upscaled-<k>x.jpg
func (h *UpscaleHandler) Upscale(c *gin.Context) {
	scale, err := parseScale(c.DefaultPostForm("scale", "2"))
	if err == nil {
		err = h.upscaler.ValidateScale(scale)
	}
	if err != nil {
		fail(c, "放大倍数无效", err)
		return
	}

	upload, err := readImage(c, h.policy)
	if err != nil {
		fail(c, "请上传有效的图片文件", err)
		return
	}

	ctx := c.Request.Context()
	filename := fmt.Sprintf("upscaled-%dx.jpg", scale)
	cacheKey := utils.CacheKey("upscale", upload.MD5, strconv.Itoa(scale))
	if data := cacheGet(ctx, h.cache, cacheKey); data != nil {
		sendAttachment(c, filename, "image/jpeg", upload.MD5, data)
		return
	}

	release, ok := acquireSlot(c, h.limiter)
	if !ok {
		return
	}
	defer release()

	data, err := h.upscaler.UpscaleJPEG(upload.Image, scale)
	if err != nil {
		fail(c, "图片放大失败", err)
		return
	}

	b := upload.Image.Bounds()
	utils.Logger.Info("image upscaled",
		zap.String("md5", upload.MD5),
		zap.Int("scale", scale),
		zap.Int("width", b.Dx()*scale),
		zap.Int("height", b.Dy()*scale))

	cacheSet(ctx, h.cache, cacheKey, data)
	sendAttachment(c, filename, "image/jpeg", upload.MD5, data)
}

// parseScale 接受 "4" 或 "4x"
func parseScale(s string) (int, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "x")
	scale, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", service.ErrInvalidScale, s)
	}
	return scale, nil
}

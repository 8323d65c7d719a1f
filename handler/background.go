package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const removedBackgroundFilename = "removed-background.png"

type BackgroundHandler struct {
	policy       *service.UploadPolicy
	limiter      *service.Limiter
	compositor   *service.MaskCompositor
	segmenter    service.Segmenter
	remover      service.BackgroundRemover
	cache        Cache
	maxDimension int
}

func NewBackgroundHandler(
	policy *service.UploadPolicy,
	limiter *service.Limiter,
	compositor *service.MaskCompositor,
	segmenter service.Segmenter,
	remover service.BackgroundRemover,
	cache Cache,
	maxDimension int,
) *BackgroundHandler {
	return &BackgroundHandler{
		policy:       policy,
		limiter:      limiter,
		compositor:   compositor,
		segmenter:    segmenter,
		remover:      remover,
		cache:        cache,
		maxDimension: maxDimension,
	}
}

// Composite 用分割掩码去除背景。
// 客户端提供 segments 时直接合成；否则由服务端分割器生成。
func (h *BackgroundHandler) Composite(c *gin.Context) {
	upload, err := readImage(c, h.policy)
	if err != nil {
		fail(c, "请上传有效的图片文件", err)
		return
	}

	var segments []model.Segment
	clientSegments := c.PostForm("segments") != ""
	if clientSegments {
		if err := json.Unmarshal([]byte(c.PostForm("segments")), &segments); err != nil {
			respondError(c, http.StatusBadRequest, "分割数据格式错误",
				fmt.Errorf("%w: %v", service.ErrMalformedMask, err))
			return
		}
	}

	ctx := c.Request.Context()
	cacheKey := utils.CacheKey("composite", upload.MD5, h.segmenter.Name())
	if !clientSegments {
		if data := cacheGet(ctx, h.cache, cacheKey); data != nil {
			sendAttachment(c, removedBackgroundFilename, "image/png", upload.MD5, data)
			return
		}
	}

	release, ok := acquireSlot(c, h.limiter)
	if !ok {
		return
	}
	defer release()

	img := upload.Image
	if !clientSegments {
		img = service.FitForSegmentation(img, h.maxDimension)
		segments, err = h.segmenter.Segment(ctx, img)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "图像分割失败", err)
			return
		}
	}

	data, err := h.compositor.Composite(img, segments)
	if err != nil {
		status := statusFor(err)
		if !clientSegments && status == http.StatusBadRequest {
			// 分割器产出的掩码异常属于服务端错误
			status = http.StatusInternalServerError
		}
		respondError(c, status, "背景去除失败", err)
		return
	}

	utils.Logger.Info("background composited",
		zap.String("md5", upload.MD5),
		zap.Int("segments", len(segments)),
		zap.Bool("client_segments", clientSegments))

	if !clientSegments {
		cacheSet(ctx, h.cache, cacheKey, data)
	}
	sendAttachment(c, removedBackgroundFilename, "image/png", upload.MD5, data)
}

// Remove 调用远程去背景接口
func (h *BackgroundHandler) Remove(c *gin.Context) {
	upload, err := readImage(c, h.policy)
	if err != nil {
		fail(c, "请上传有效的图片文件", err)
		return
	}

	ctx := c.Request.Context()
	cacheKey := utils.CacheKey("removebg", upload.MD5)
	if data := cacheGet(ctx, h.cache, cacheKey); data != nil {
		sendAttachment(c, removedBackgroundFilename, http.DetectContentType(data), upload.MD5, data)
		return
	}

	data, contentType, err := h.remover.Remove(ctx, upload.Image)
	if err != nil {
		fail(c, "远程去背景失败", err)
		return
	}

	utils.Logger.Info("background removed remotely",
		zap.String("md5", upload.MD5),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)))

	cacheSet(ctx, h.cache, cacheKey, data)
	sendAttachment(c, removedBackgroundFilename, contentType, upload.MD5, data)
}

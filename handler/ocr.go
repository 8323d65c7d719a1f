package handler

import (
	"net/http"

	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const extractedTextFilename = "extracted-text.txt"

type OCRHandler struct {
	policy  *service.UploadPolicy
	limiter *service.Limiter
	ocr     *service.OCRService
	cache   Cache
}

func NewOCRHandler(policy *service.UploadPolicy, limiter *service.Limiter, ocr *service.OCRService, cache Cache) *OCRHandler {
	return &OCRHandler{
		policy:  policy,
		limiter: limiter,
		ocr:     ocr,
		cache:   cache,
	}
}

// Extract 识别图片文字；download=true 时以 txt 附件返回
func (h *OCRHandler) Extract(c *gin.Context) {
	lang, err := h.ocr.ResolveLanguage(c.PostForm("language"))
	if err != nil {
		fail(c, "不支持的识别语言", err)
		return
	}

	upload, err := readImage(c, h.policy)
	if err != nil {
		fail(c, "请上传有效的图片文件", err)
		return
	}

	ctx := c.Request.Context()
	cacheKey := utils.CacheKey("ocr", upload.MD5, h.ocr.EngineName(), lang)

	var result *model.OCRResult
	if h.cache != nil {
		result, err = h.cache.GetOCRResult(ctx, cacheKey)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.String("cache_key", cacheKey), zap.Error(err))
		}
	}

	if result == nil {
		release, ok := acquireSlot(c, h.limiter)
		if !ok {
			return
		}
		result, err = h.ocr.Extract(ctx, upload.Image, upload.MD5, lang)
		release()
		if err != nil {
			fail(c, "文字识别失败", err)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetOCRResult(ctx, cacheKey, result); err != nil {
				utils.Logger.Warn("failed to set cache", zap.String("cache_key", cacheKey), zap.Error(err))
			}
		}
	} else {
		utils.Logger.Info("cache hit", zap.String("cache_key", cacheKey))
	}

	if formBool(c, "download") {
		sendAttachment(c, extractedTextFilename, "text/plain; charset=utf-8", upload.MD5, []byte(result.Text))
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "识别成功",
		Data:    result,
	})
}

package handler

import (
	"fmt"
	"image"
	"net/http"

	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const memeFilename = "meme.png"

type MemeHandler struct {
	policy    *service.UploadPolicy
	limiter   *service.Limiter
	generator *service.MemeGenerator
	fetcher   *service.Fetcher
}

func NewMemeHandler(policy *service.UploadPolicy, limiter *service.Limiter, generator *service.MemeGenerator, fetcher *service.Fetcher) *MemeHandler {
	return &MemeHandler{
		policy:    policy,
		limiter:   limiter,
		generator: generator,
		fetcher:   fetcher,
	}
}

// Templates 模板列表
func (h *MemeHandler) Templates(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "查询成功",
		Data:    h.generator.Templates(),
	})
}

// Generate 模板或上传图片 + 上下文字，返回 meme.png
func (h *MemeHandler) Generate(c *gin.Context) {
	var req model.MemeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "参数错误", fmt.Errorf("%w: %v", service.ErrInvalidOption, err))
		return
	}

	var (
		img       image.Image
		sourceMD5 string
	)
	if req.TemplateID != "" {
		tmpl, ok := h.generator.Template(req.TemplateID)
		if !ok {
			respondError(c, http.StatusBadRequest, "模板不存在",
				fmt.Errorf("%w: unknown template %q", service.ErrInvalidOption, req.TemplateID))
			return
		}
		data, err := h.fetcher.Fetch(c.Request.Context(), tmpl.URL)
		if err != nil {
			respondError(c, http.StatusBadGateway, "模板下载失败", err)
			return
		}
		decoded, err := h.policy.Decode(data)
		if err != nil {
			respondError(c, http.StatusBadGateway, "模板图片无效", err)
			return
		}
		img, sourceMD5 = decoded, utils.BytesMD5(data)
	} else {
		upload, err := readImage(c, h.policy)
		if err != nil {
			fail(c, "请选择模板或上传图片", err)
			return
		}
		img, sourceMD5 = upload.Image, upload.MD5
	}

	release, ok := acquireSlot(c, h.limiter)
	if !ok {
		return
	}
	defer release()

	data, err := h.generator.Generate(img, req)
	if err != nil {
		fail(c, "表情包生成失败", err)
		return
	}

	utils.Logger.Info("meme generated",
		zap.String("template", req.TemplateID),
		zap.String("md5", sourceMD5),
		zap.Int("bytes", len(data)))

	sendAttachment(c, memeFilename, "image/png", sourceMD5, data)
}

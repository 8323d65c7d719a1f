package handler

import (
	"fmt"
	"net/http"

	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QRCodeHandler struct {
	encoder *service.QREncoder
}

func NewQRCodeHandler(encoder *service.QREncoder) *QRCodeHandler {
	return &QRCodeHandler{encoder: encoder}
}

// Generate 生成二维码，返回 qrcode.png 或 qrcode.svg
func (h *QRCodeHandler) Generate(c *gin.Context) {
	var req model.QRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "参数错误", fmt.Errorf("%w: %v", service.ErrInvalidOption, err))
		return
	}

	payload, err := service.BuildQRPayload(req)
	if err != nil {
		fail(c, "二维码内容无效", err)
		return
	}
	opts, err := h.encoder.Options(req)
	if err != nil {
		fail(c, "二维码参数无效", err)
		return
	}

	data, contentType, err := h.encoder.Encode(payload, opts)
	if err != nil {
		fail(c, "二维码生成失败", err)
		return
	}

	utils.Logger.Info("qrcode generated",
		zap.String("type", req.Type),
		zap.String("format", opts.Format),
		zap.Int("bytes", len(data)))

	sendAttachment(c, "qrcode."+opts.Format, contentType, "", data)
}

package handler

import "github.com/gin-gonic/gin"

// Handlers 所有工具接口
type Handlers struct {
	Upload     *UploadHandler
	Background *BackgroundHandler
	Upscale    *UpscaleHandler
	OCR        *OCRHandler
	Meme       *MemeHandler
	QRCode     *QRCodeHandler
}

// Register 挂载到 /api/v1，未初始化的工具不注册
func (h *Handlers) Register(api *gin.RouterGroup) {
	if h.Upload != nil {
		api.POST("/upload", h.Upload.Upload)
	}
	if h.Background != nil {
		api.POST("/background/composite", h.Background.Composite)
		api.POST("/background/remove", h.Background.Remove)
	}
	if h.Upscale != nil {
		api.POST("/upscale", h.Upscale.Upscale)
	}
	if h.OCR != nil {
		api.POST("/ocr", h.OCR.Extract)
	}
	if h.Meme != nil {
		api.GET("/meme/templates", h.Meme.Templates)
		api.POST("/meme", h.Meme.Generate)
	}
	if h.QRCode != nil {
		api.POST("/qrcode", h.QRCode.Generate)
	}
}

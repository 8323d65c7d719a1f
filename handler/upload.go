package handler

import (
	"net/http"

	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	policy *service.UploadPolicy
}

func NewUploadHandler(policy *service.UploadPolicy) *UploadHandler {
	return &UploadHandler{policy: policy}
}

// Upload 校验上传图片并返回预览
func (h *UploadHandler) Upload(c *gin.Context) {
	upload, err := readImage(c, h.policy)
	if err != nil {
		fail(c, "请上传有效的图片文件", err)
		return
	}

	b := upload.Image.Bounds()
	utils.Logger.Info("file uploaded",
		zap.String("filename", upload.Filename),
		zap.String("md5", upload.MD5),
		zap.Int("size", len(upload.Data)),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "上传成功",
		Data: model.UploadPreview{
			MD5:         upload.MD5,
			Filename:    upload.Filename,
			ContentType: upload.ContentType,
			Size:        int64(len(upload.Data)),
			Width:       b.Dx(),
			Height:      b.Dy(),
			DataURL:     service.PreviewURL(upload.Data, upload.ContentType),
		},
	})
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"go.uber.org/zap"
)

// maxResponseBytes 远程结果上限
const maxResponseBytes = 50 << 20

// BackgroundRemover 远程去背景
type BackgroundRemover interface {
	Remove(ctx context.Context, img image.Image) ([]byte, string, error)
}

// RemoveBGClient remove.bg 兼容接口客户端。密钥只在服务端持有。
type RemoveBGClient struct {
	endpoint    string
	apiKey      string
	jpegQuality int
	httpClient  *http.Client
}

func NewRemoveBGClient(cfg *config.RemoveBGConfig) *RemoveBGClient {
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	return &RemoveBGClient{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		jpegQuality: quality,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured 是否配置了密钥
func (c *RemoveBGClient) Configured() bool {
	return c.apiKey != ""
}

// Remove 上传 JPEG 并返回处理后的图片及其 Content-Type；非 2xx 返回 *APIError，不重试
func (c *RemoveBGClient) Remove(ctx context.Context, img image.Image) ([]byte, string, error) {
	if !c.Configured() {
		return nil, "", ErrMissingAPIKey
	}

	jpegData, err := EncodeJPEG(img, c.jpegQuality)
	if err != nil {
		return nil, "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image_file", "image.jpg")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(jpegData); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	for _, field := range [][2]string{{"size", "auto"}, {"format", "auto"}} {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: background removal request: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read background removal response: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, data)
		utils.Logger.Warn("background removal api failed",
			zap.Int("status", resp.StatusCode),
			zap.String("title", apiErr.Title),
			zap.String("code", apiErr.Code))
		return nil, "", apiErr
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// parseAPIError 解析 {"errors":[{"title":"...","code":"..."}]}，解析失败时保留状态码
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Errors []struct {
			Title string `json:"title"`
			Code  string `json:"code"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		apiErr.Title = payload.Errors[0].Title
		apiErr.Code = payload.Errors[0].Code
		return apiErr
	}
	apiErr.Title = http.StatusText(status)
	return apiErr
}

package model

// Segment 单个分割类别：标签 + 每像素置信度（长度 W*H，取值 [0,1]）
type Segment struct {
	Label string    `json:"label"`
	Mask  []float32 `json:"mask"`
}

// UploadPreview 上传预览
type UploadPreview struct {
	MD5         string `json:"md5"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	DataURL     string `json:"data_url"`
}

// OCRResult 文字识别结果
type OCRResult struct {
	MD5        string  `json:"md5"`
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Engine     string  `json:"engine"`
	Timestamp  int64   `json:"timestamp"`
}

// QRRequest 二维码生成请求
type QRRequest struct {
	Type       string `json:"type"` // url, text, sms, phone
	Value      string `json:"value"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message,omitempty"`
	Foreground string `json:"foreground,omitempty"`
	Background string `json:"background,omitempty"`
	Margin     *int   `json:"margin,omitempty"`
	Size       int    `json:"size,omitempty"`
	Level      string `json:"level,omitempty"`
	Format     string `json:"format,omitempty"` // png, svg
}

// MemeRequest 表情包参数，TemplateID 为空时使用上传的图片
type MemeRequest struct {
	TemplateID  string  `json:"template_id" form:"template_id"`
	TopText     string  `json:"top_text" form:"top_text"`
	BottomText  string  `json:"bottom_text" form:"bottom_text"`
	FontFamily  string  `json:"font_family" form:"font_family"`
	FontSize    float64 `json:"font_size" form:"font_size"`
	TextColor   string  `json:"text_color" form:"text_color"`
	StrokeColor string  `json:"stroke_color" form:"stroke_color"`
	StrokeWidth *int    `json:"stroke_width" form:"stroke_width"`
}

// Response 通用成功响应
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

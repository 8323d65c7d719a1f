package service

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	QRFormatPNG = "png"
	QRFormatSVG = "svg"
)

// QROptions 渲染参数
type QROptions struct {
	Foreground color.NRGBA
	Background color.NRGBA
	Margin     int // 像素
	Size       int // 码区边长（像素），不含 margin
	Level      qrcode.RecoveryLevel
	Format     string
}

// QREncoder 二维码生成，相同输入与参数输出字节完全一致
type QREncoder struct {
	defaults config.QRCodeConfig
}

func NewQREncoder(cfg *config.QRCodeConfig) *QREncoder {
	return &QREncoder{defaults: *cfg}
}

// BuildQRPayload 按内容类型拼接编码文本
func BuildQRPayload(req model.QRRequest) (string, error) {
	switch strings.ToLower(req.Type) {
	case "", "text":
		if req.Value == "" {
			return "", fmt.Errorf("%w: text is required", ErrInvalidOption)
		}
		return req.Value, nil
	case "url":
		v := strings.TrimSpace(req.Value)
		if v == "" || v == "https://" || v == "http://" {
			return "", fmt.Errorf("%w: url is required", ErrInvalidOption)
		}
		return v, nil
	case "sms":
		if req.Phone == "" || req.Message == "" {
			return "", fmt.Errorf("%w: phone and message are required", ErrInvalidOption)
		}
		return "smsto:" + req.Phone + ":" + req.Message, nil
	case "phone":
		if req.Phone == "" {
			return "", fmt.Errorf("%w: phone is required", ErrInvalidOption)
		}
		return "tel:" + req.Phone, nil
	default:
		return "", fmt.Errorf("%w: unknown content type %q", ErrInvalidOption, req.Type)
	}
}

// Options 用默认值补全请求参数并校验
func (e *QREncoder) Options(req model.QRRequest) (QROptions, error) {
	fgHex := firstNonEmpty(req.Foreground, e.defaults.Foreground)
	bgHex := firstNonEmpty(req.Background, e.defaults.Background)
	fg, err := ParseHexColor(fgHex)
	if err != nil {
		return QROptions{}, err
	}
	bg, err := ParseHexColor(bgHex)
	if err != nil {
		return QROptions{}, err
	}

	margin := e.defaults.Margin
	if req.Margin != nil {
		margin = *req.Margin
	}
	size := e.defaults.Size
	if req.Size != 0 {
		size = req.Size
	}
	if margin < 0 || size <= 0 || (e.defaults.MaxSize > 0 && size+2*margin > e.defaults.MaxSize) {
		return QROptions{}, fmt.Errorf("%w: size %d / margin %d out of range", ErrInvalidOption, size, margin)
	}

	level, err := parseRecoveryLevel(firstNonEmpty(req.Level, e.defaults.Level))
	if err != nil {
		return QROptions{}, err
	}

	format := strings.ToLower(firstNonEmpty(req.Format, QRFormatPNG))
	if format != QRFormatPNG && format != QRFormatSVG {
		return QROptions{}, fmt.Errorf("%w: format %q", ErrInvalidOption, req.Format)
	}

	return QROptions{Foreground: fg, Background: bg, Margin: margin, Size: size, Level: level, Format: format}, nil
}

// Encode 返回编码结果及 Content-Type
func (e *QREncoder) Encode(payload string, opts QROptions) ([]byte, string, error) {
	q, err := qrcode.New(payload, opts.Level)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	q.DisableBorder = true
	q.ForegroundColor = opts.Foreground
	q.BackgroundColor = opts.Background

	if opts.Format == QRFormatSVG {
		return renderSVG(q.Bitmap(), opts), "image/svg+xml", nil
	}

	code := q.Image(opts.Size)
	side := code.Bounds().Dx() + 2*opts.Margin
	canvas := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	draw.Draw(canvas, code.Bounds().Add(image.Pt(opts.Margin, opts.Margin)), code, code.Bounds().Min, draw.Src)

	data, err := EncodePNG(canvas)
	if err != nil {
		return nil, "", err
	}
	return data, "image/png", nil
}

func renderSVG(bitmap [][]bool, opts QROptions) []byte {
	modules := len(bitmap)
	side := opts.Size + 2*opts.Margin
	scale := float64(opts.Size) / float64(modules)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		side, side, side, side)
	fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s"/>`, hexColor(opts.Background))
	fmt.Fprintf(&sb, `<g fill="%s">`, hexColor(opts.Foreground))
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			fmt.Fprintf(&sb, `<rect x="%.3f" y="%.3f" width="%.3f" height="%.3f"/>`,
				float64(opts.Margin)+float64(x)*scale, float64(opts.Margin)+float64(y)*scale, scale, scale)
		}
	}
	sb.WriteString(`</g></svg>`)
	return []byte(sb.String())
}

// ParseHexColor 解析 #rgb / #rrggbb
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidOption, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidOption, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func parseRecoveryLevel(level string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(level) {
	case "low", "l":
		return qrcode.Low, nil
	case "", "medium", "m":
		return qrcode.Medium, nil
	case "high", "q":
		return qrcode.High, nil
	case "highest", "h":
		return qrcode.Highest, nil
	default:
		return qrcode.Medium, fmt.Errorf("%w: recovery level %q", ErrInvalidOption, level)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package service

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	MinMemeFontSize    = 16
	MaxMemeFontSize    = 72
	MaxMemeStrokeWidth = 6

	defaultMemeTextColor   = "#ffffff"
	defaultMemeStrokeColor = "#000000"
)

// MemeOptions 归一化后的绘制参数
type MemeOptions struct {
	TopText     string
	BottomText  string
	Font        *opentype.Font
	FontSize    float64
	TextColor   color.NRGBA
	StrokeColor color.NRGBA
	StrokeWidth int
}

// MemeGenerator 在图片上下方绘制描边文字
type MemeGenerator struct {
	cfg   config.MemeConfig
	fonts map[string]*opentype.Font
}

func NewMemeGenerator(cfg *config.MemeConfig) (*MemeGenerator, error) {
	fonts := make(map[string]*opentype.Font, 3)
	for name, ttf := range map[string][]byte{
		"bold":    gobold.TTF,
		"medium":  gomedium.TTF,
		"regular": goregular.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s font: %w", name, err)
		}
		fonts[name] = f
	}
	return &MemeGenerator{cfg: *cfg, fonts: fonts}, nil
}

// Templates 可用模板
func (g *MemeGenerator) Templates() []config.MemeTemplate {
	return g.cfg.Templates
}

// Template 按 ID 查找模板
func (g *MemeGenerator) Template(id string) (config.MemeTemplate, bool) {
	for _, t := range g.cfg.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return config.MemeTemplate{}, false
}

// FontFor 字体族映射到内置 Go 字体
func (g *MemeGenerator) FontFor(family string) *opentype.Font {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "", "impact":
		return g.fonts["bold"]
	case "comic sans ms", "comic sans":
		return g.fonts["medium"]
	default:
		return g.fonts["regular"]
	}
}

// Options 补全默认值并夹紧字号、描边宽度
func (g *MemeGenerator) Options(req model.MemeRequest) (MemeOptions, error) {
	size := req.FontSize
	if size == 0 || math.IsNaN(size) {
		size = g.cfg.FontSize
	}
	size = clampFloat(size, MinMemeFontSize, MaxMemeFontSize)

	stroke := int(g.cfg.StrokeWidth)
	if req.StrokeWidth != nil {
		stroke = *req.StrokeWidth
	}
	stroke = max(0, min(stroke, MaxMemeStrokeWidth))

	fill, err := ParseHexColor(firstNonEmpty(req.TextColor, defaultMemeTextColor))
	if err != nil {
		return MemeOptions{}, err
	}
	strokeColor, err := ParseHexColor(firstNonEmpty(req.StrokeColor, defaultMemeStrokeColor))
	if err != nil {
		return MemeOptions{}, err
	}

	return MemeOptions{
		TopText:     req.TopText,
		BottomText:  req.BottomText,
		Font:        g.FontFor(req.FontFamily),
		FontSize:    size,
		TextColor:   fill,
		StrokeColor: strokeColor,
		StrokeWidth: stroke,
	}, nil
}

// Render 绘制文字，返回新图片，不修改输入
func (g *MemeGenerator) Render(img image.Image, opts MemeOptions) (*image.NRGBA, error) {
	canvas := imaging.Clone(img)
	if opts.TopText == "" && opts.BottomText == "" {
		return canvas, nil
	}

	face, err := opentype.NewFace(opts.Font, &opentype.FaceOptions{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	height := canvas.Bounds().Dy()
	if opts.TopText != "" {
		drawOutlined(canvas, face, opts.TopText, int(opts.FontSize)+10, opts)
	}
	if opts.BottomText != "" {
		drawOutlined(canvas, face, opts.BottomText, height-20, opts)
	}
	return canvas, nil
}

// Generate 渲染并编码为 PNG
func (g *MemeGenerator) Generate(img image.Image, req model.MemeRequest) ([]byte, error) {
	opts, err := g.Options(req)
	if err != nil {
		return nil, err
	}
	out, err := g.Render(img, opts)
	if err != nil {
		return nil, err
	}
	return EncodePNG(out)
}

// drawOutlined 以 baseline 水平居中，先画描边再画填充
func drawOutlined(dst *image.NRGBA, face font.Face, text string, baseline int, opts MemeOptions) {
	width := font.MeasureString(face, text)
	x := fixed.I(dst.Bounds().Dx())/2 - width/2
	y := fixed.I(baseline)

	d := &font.Drawer{Dst: dst, Face: face}

	if r := opts.StrokeWidth; r > 0 {
		d.Src = image.NewUniform(opts.StrokeColor)
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if (dx == 0 && dy == 0) || dx*dx+dy*dy > r*r {
					continue
				}
				d.Dot = fixed.Point26_6{X: x + fixed.I(dx), Y: y + fixed.I(dy)}
				d.DrawString(text)
			}
		}
	}

	d.Src = image.NewUniform(opts.TextColor)
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(text)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

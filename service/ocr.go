package service

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"go.uber.org/zap"
)

// OCRInput 单张待识别图片（PNG 编码）
type OCRInput struct {
	ID       string
	Image    []byte
	Language string
}

// OCROutput 引擎识别结果
type OCROutput struct {
	Text       string
	Confidence float64
}

// OCREngine 一图一结果，失败直接返回错误，不重试
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, in OCRInput) (OCROutput, error)
}

// OCRService 校验语言并调用引擎
type OCRService struct {
	engine          OCREngine
	languages       map[string]bool
	defaultLanguage string
}

func NewOCRService(cfg *config.OCRConfig, engine OCREngine) *OCRService {
	languages := make(map[string]bool, len(cfg.Languages))
	for _, l := range cfg.Languages {
		languages[strings.ToLower(strings.TrimSpace(l))] = true
	}
	return &OCRService{
		engine:          engine,
		languages:       languages,
		defaultLanguage: strings.ToLower(cfg.DefaultLanguage),
	}
}

// EngineName 当前引擎名
func (s *OCRService) EngineName() string {
	return s.engine.Name()
}

// ResolveLanguage 空值取默认语言；不在列表中的语言拒绝
func (s *OCRService) ResolveLanguage(lang string) (string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = s.defaultLanguage
	}
	if len(s.languages) > 0 && !s.languages[lang] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLang, lang)
	}
	return lang, nil
}

// Extract 识别图片中的文字
func (s *OCRService) Extract(ctx context.Context, img image.Image, md5, lang string) (*model.OCRResult, error) {
	lang, err := s.ResolveLanguage(lang)
	if err != nil {
		return nil, err
	}

	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	out, err := s.engine.Recognize(ctx, OCRInput{ID: md5, Image: data, Language: lang})
	if err != nil {
		return nil, fmt.Errorf("%w: %s recognize: %w", ErrUpstream, s.engine.Name(), err)
	}

	utils.Logger.Info("text extracted",
		zap.String("md5", md5),
		zap.String("engine", s.engine.Name()),
		zap.String("language", lang),
		zap.Int("chars", len(out.Text)),
		zap.Duration("duration", time.Since(startTime)))

	return &model.OCRResult{
		MD5:        md5,
		Text:       out.Text,
		Language:   lang,
		Confidence: out.Confidence,
		Engine:     s.engine.Name(),
		Timestamp:  time.Now().Unix(),
	}, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 PIXFLOW_REMOVEBG_API_KEY
const EnvPrefix = "PIXFLOW"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Compositor CompositorConfig `mapstructure:"compositor"`
	Segmenter  SegmenterConfig  `mapstructure:"segmenter"`
	Upscaler   UpscalerConfig   `mapstructure:"upscaler"`
	RemoveBG   RemoveBGConfig   `mapstructure:"removebg"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	QRCode     QRCodeConfig     `mapstructure:"qrcode"`
	Meme       MemeConfig       `mapstructure:"meme"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSizeMB     int64  `mapstructure:"max_size_mb"`
	AcceptPattern string `mapstructure:"accept_pattern"`
	MaxPixels     int64  `mapstructure:"max_pixels"` // 解码前按图片头部尺寸拦截
}

// MaxBytes 上传大小上限（字节）
func (c UploadConfig) MaxBytes() int64 {
	return c.MaxSizeMB * 1024 * 1024
}

type ProcessingConfig struct {
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"`
}

// CompositorConfig 掩码合成参数。阈值与排除标签历史上多次调整，一律走配置。
type CompositorConfig struct {
	Threshold      float64  `mapstructure:"threshold"`
	ExcludedLabels []string `mapstructure:"excluded_labels"`
	BlurRadius     float64  `mapstructure:"blur_radius"`
	EdgeCutoff     uint8    `mapstructure:"edge_cutoff"`
	SoftBlurRadius float64  `mapstructure:"soft_blur_radius"`
	MaxDimension   int      `mapstructure:"max_dimension"`
}

type SegmenterConfig struct {
	Backend             string  `mapstructure:"backend"`
	BackgroundLuminance float64 `mapstructure:"background_luminance"`
	Spread              float64 `mapstructure:"spread"`
	GrabCutIterations   int     `mapstructure:"grabcut_iterations"`
	BorderSize          int     `mapstructure:"border_size"`
}

type UpscalerConfig struct {
	AllowedScales   []int   `mapstructure:"allowed_scales"`
	SharpenAmount   float64 `mapstructure:"sharpen_amount"`
	JPEGQuality     int     `mapstructure:"jpeg_quality"`
	MaxOutputPixels int64   `mapstructure:"max_output_pixels"`
}

type RemoveBGConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	JPEGQuality int           `mapstructure:"jpeg_quality"`
}

type OCRConfig struct {
	Engine          string   `mapstructure:"engine"`
	DefaultLanguage string   `mapstructure:"default_language"`
	Languages       []string `mapstructure:"languages"`
	AWSRegion       string   `mapstructure:"aws_region"`
}

type QRCodeConfig struct {
	Size       int    `mapstructure:"size"`
	Margin     int    `mapstructure:"margin"`
	Foreground string `mapstructure:"foreground"`
	Background string `mapstructure:"background"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
}

type MemeConfig struct {
	FontSize     float64        `mapstructure:"font_size"`
	StrokeWidth  float64        `mapstructure:"stroke_width"`
	FetchTimeout time.Duration  `mapstructure:"fetch_timeout"`
	Templates    []MemeTemplate `mapstructure:"templates"`
}

type MemeTemplate struct {
	ID   string `mapstructure:"id" json:"id"`
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// Load 从 YAML 文件加载配置，环境变量优先
func Load(configPath string) (*Config, error) {
	// .env 只补充未设置的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		// 如果加载失败，返回默认配置
		return Default()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	v.SetDefault("upload.max_size_mb", d.Upload.MaxSizeMB)
	v.SetDefault("upload.accept_pattern", d.Upload.AcceptPattern)
	v.SetDefault("upload.max_pixels", d.Upload.MaxPixels)

	v.SetDefault("processing.max_concurrent", d.Processing.MaxConcurrent)
	v.SetDefault("processing.queue_timeout", d.Processing.QueueTimeout)

	v.SetDefault("compositor.threshold", d.Compositor.Threshold)
	v.SetDefault("compositor.excluded_labels", d.Compositor.ExcludedLabels)
	v.SetDefault("compositor.blur_radius", d.Compositor.BlurRadius)
	v.SetDefault("compositor.edge_cutoff", d.Compositor.EdgeCutoff)
	v.SetDefault("compositor.soft_blur_radius", d.Compositor.SoftBlurRadius)
	v.SetDefault("compositor.max_dimension", d.Compositor.MaxDimension)

	v.SetDefault("segmenter.backend", d.Segmenter.Backend)
	v.SetDefault("segmenter.background_luminance", d.Segmenter.BackgroundLuminance)
	v.SetDefault("segmenter.spread", d.Segmenter.Spread)
	v.SetDefault("segmenter.grabcut_iterations", d.Segmenter.GrabCutIterations)
	v.SetDefault("segmenter.border_size", d.Segmenter.BorderSize)

	v.SetDefault("upscaler.allowed_scales", d.Upscaler.AllowedScales)
	v.SetDefault("upscaler.sharpen_amount", d.Upscaler.SharpenAmount)
	v.SetDefault("upscaler.jpeg_quality", d.Upscaler.JPEGQuality)
	v.SetDefault("upscaler.max_output_pixels", d.Upscaler.MaxOutputPixels)

	v.SetDefault("removebg.endpoint", d.RemoveBG.Endpoint)
	v.SetDefault("removebg.api_key", "")
	v.SetDefault("removebg.timeout", d.RemoveBG.Timeout)
	v.SetDefault("removebg.jpeg_quality", d.RemoveBG.JPEGQuality)

	v.SetDefault("ocr.engine", d.OCR.Engine)
	v.SetDefault("ocr.default_language", d.OCR.DefaultLanguage)
	v.SetDefault("ocr.languages", d.OCR.Languages)
	v.SetDefault("ocr.aws_region", d.OCR.AWSRegion)

	v.SetDefault("qrcode.size", d.QRCode.Size)
	v.SetDefault("qrcode.margin", d.QRCode.Margin)
	v.SetDefault("qrcode.foreground", d.QRCode.Foreground)
	v.SetDefault("qrcode.background", d.QRCode.Background)
	v.SetDefault("qrcode.level", d.QRCode.Level)
	v.SetDefault("qrcode.max_size", d.QRCode.MaxSize)

	v.SetDefault("meme.font_size", d.Meme.FontSize)
	v.SetDefault("meme.stroke_width", d.Meme.StrokeWidth)
	v.SetDefault("meme.fetch_timeout", d.Meme.FetchTimeout)
	v.SetDefault("meme.templates", d.Meme.Templates)
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			Mode:            "debug",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxSizeMB:     5,
			AcceptPattern: "image/*",
			MaxPixels:     40_000_000,
		},
		Processing: ProcessingConfig{
			MaxConcurrent: 3,
			QueueTimeout:  30 * time.Second,
		},
		Compositor: CompositorConfig{
			Threshold:      0.5,
			ExcludedLabels: []string{"wall", "floor", "ceiling", "sky", "road", "ground", "building"},
			BlurRadius:     2,
			EdgeCutoff:     10,
			SoftBlurRadius: 1,
			MaxDimension:   1024,
		},
		Segmenter: SegmenterConfig{
			Backend:             "luminance",
			BackgroundLuminance: 245,
			Spread:              48,
			GrabCutIterations:   5,
			BorderSize:          10,
		},
		Upscaler: UpscalerConfig{
			AllowedScales:   []int{1, 2, 4, 8},
			SharpenAmount:   0.2,
			JPEGQuality:     95,
			MaxOutputPixels: 64 * 1000 * 1000,
		},
		RemoveBG: RemoveBGConfig{
			Endpoint:    "https://api.remove.bg/v1.0/removebg",
			Timeout:     60 * time.Second,
			JPEGQuality: 95,
		},
		OCR: OCRConfig{
			Engine:          "tesseract",
			DefaultLanguage: "eng",
			Languages:       []string{"eng", "hin", "spa"},
			AWSRegion:       "us-east-1",
		},
		QRCode: QRCodeConfig{
			Size:       200,
			Margin:     20,
			Foreground: "#000000",
			Background: "#ffffff",
			Level:      "medium",
			MaxSize:    2048,
		},
		Meme: MemeConfig{
			FontSize:     32,
			StrokeWidth:  2,
			FetchTimeout: 15 * time.Second,
			Templates: []MemeTemplate{
				{ID: "drake", Name: "Drake", URL: "https://imgflip.com/s/meme/Drake-Hotline-Bling.jpg"},
				{ID: "distracted", Name: "Distracted Boyfriend", URL: "https://imgflip.com/s/meme/Distracted-Boyfriend.jpg"},
				{ID: "button", Name: "Two Buttons", URL: "https://imgflip.com/s/meme/Two-Buttons.jpg"},
				{ID: "change", Name: "Change My Mind", URL: "https://imgflip.com/s/meme/Change-My-Mind.jpg"},
				{ID: "doge", Name: "Doge", URL: "https://imgflip.com/s/meme/Doge.jpg"},
			},
		},
	}
}

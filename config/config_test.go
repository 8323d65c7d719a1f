package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d := Default()
	if cfg.Upload.MaxSizeMB != d.Upload.MaxSizeMB || cfg.Upload.AcceptPattern != "image/*" || cfg.Upload.MaxPixels != 40_000_000 {
		t.Fatalf("unexpected upload config %+v", cfg.Upload)
	}
	if cfg.Compositor.Threshold != 0.5 || cfg.Compositor.EdgeCutoff != 10 || len(cfg.Compositor.ExcludedLabels) != 7 {
		t.Fatalf("unexpected compositor config %+v", cfg.Compositor)
	}
	if cfg.Upscaler.JPEGQuality != 95 || len(cfg.Upscaler.AllowedScales) != 4 {
		t.Fatalf("unexpected upscaler config %+v", cfg.Upscaler)
	}
	if cfg.Processing.QueueTimeout != 30*time.Second {
		t.Fatalf("unexpected queue timeout %v", cfg.Processing.QueueTimeout)
	}
	if len(cfg.Meme.Templates) != len(d.Meme.Templates) || cfg.Meme.Templates[0].ID != "drake" {
		t.Fatalf("unexpected meme templates %+v", cfg.Meme.Templates)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: ":9090"
  mode: release
upload:
  max_size_mb: 10
compositor:
  threshold: 0.7
  excluded_labels: [sky]
upscaler:
  allowed_scales: [2, 4]
processing:
  queue_timeout: 5s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != ":9090" || cfg.Server.Mode != "release" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Upload.MaxBytes() != 10*1024*1024 {
		t.Fatalf("max bytes = %d", cfg.Upload.MaxBytes())
	}
	if cfg.Compositor.Threshold != 0.7 || len(cfg.Compositor.ExcludedLabels) != 1 {
		t.Fatalf("unexpected compositor config %+v", cfg.Compositor)
	}
	if len(cfg.Upscaler.AllowedScales) != 2 || cfg.Upscaler.AllowedScales[1] != 4 {
		t.Fatalf("unexpected scales %v", cfg.Upscaler.AllowedScales)
	}
	if cfg.Processing.QueueTimeout != 5*time.Second {
		t.Fatalf("queue timeout = %v", cfg.Processing.QueueTimeout)
	}
	// 未覆盖的键保持默认
	if cfg.Upscaler.SharpenAmount != 0.2 {
		t.Fatalf("sharpen amount = %v", cfg.Upscaler.SharpenAmount)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PIXFLOW_REMOVEBG_API_KEY", "from-env")
	t.Setenv("PIXFLOW_OCR_ENGINE", "rekognition")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RemoveBG.APIKey != "from-env" {
		t.Fatalf("api key = %q", cfg.RemoveBG.APIKey)
	}
	if cfg.OCR.Engine != "rekognition" {
		t.Fatalf("ocr engine = %q", cfg.OCR.Engine)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

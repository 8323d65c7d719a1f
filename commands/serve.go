package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/handler"
	"github.com/DrMamtaSaini/pixflow-design-studio/middleware"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/service/tesseract"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	utils.Logger.Info("starting pixflow server",
		zap.String("version", build.Version),
		zap.String("build_time", build.BuildTime),
		zap.String("git_commit", build.GitCommit),
		zap.String("git_branch", build.GitBranch))

	// 初始化Redis，连接失败时仍可工作，只是没有缓存
	redisService := service.NewRedisService(&cfg.Redis)
	defer redisService.Close()
	cache, err := handler.ReachableCache(ctx, redisService)
	if err != nil {
		utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
	} else {
		utils.Logger.Info("redis connected successfully")
	}

	handlers, err := newHandlers(ctx, cfg, cache)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.MaxMultipartMemory = cfg.Upload.MaxBytes() + 1<<20

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": build.Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    build.Version,
			"build_time": build.BuildTime,
			"build_id":   build.BuildID,
			"git_commit": build.GitCommit,
			"git_branch": build.GitBranch,
		})
	})

	handlers.Register(r.Group("/api/v1"))

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case sig := <-quit:
		utils.Logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	utils.Logger.Info("server stopped")
	return nil
}

// newHandlers 按配置装配所有工具
func newHandlers(ctx context.Context, cfg *config.Config, cache handler.Cache) (*handler.Handlers, error) {
	policy := service.NewUploadPolicy(&cfg.Upload)
	limiter := service.NewLimiter(&cfg.Processing)

	segmenter, err := service.NewSegmenter(&cfg.Segmenter)
	if err != nil {
		return nil, err
	}

	removeBG := service.NewRemoveBGClient(&cfg.RemoveBG)
	if !removeBG.Configured() {
		utils.Logger.Warn("background removal api key not set, /background/remove will return 503",
			zap.String("env", config.EnvPrefix+"_REMOVEBG_API_KEY"))
	}

	engine, err := newOCREngine(ctx, &cfg.OCR)
	if err != nil {
		return nil, err
	}

	meme, err := service.NewMemeGenerator(&cfg.Meme)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("services initialized",
		zap.String("segmenter", segmenter.Name()),
		zap.String("ocr_engine", engine.Name()),
		zap.Int("max_concurrent", cfg.Processing.MaxConcurrent))

	return &handler.Handlers{
		Upload: handler.NewUploadHandler(policy),
		Background: handler.NewBackgroundHandler(policy, limiter, service.NewMaskCompositor(&cfg.Compositor),
			segmenter, removeBG, cache, cfg.Compositor.MaxDimension),
		Upscale: handler.NewUpscaleHandler(policy, limiter, service.NewUpscaler(&cfg.Upscaler), cache),
		OCR:     handler.NewOCRHandler(policy, limiter, service.NewOCRService(&cfg.OCR, engine), cache),
		Meme:    handler.NewMemeHandler(policy, limiter, meme, service.NewFetcher(cfg.Meme.FetchTimeout, cfg.Upload.MaxBytes())),
		QRCode:  handler.NewQRCodeHandler(service.NewQREncoder(&cfg.QRCode)),
	}, nil
}

// newOCREngine 本地 tesseract 或 AWS Rekognition
func newOCREngine(ctx context.Context, cfg *config.OCRConfig) (service.OCREngine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", "tesseract":
		return tesseract.New(), nil
	case "rekognition":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return service.NewRekognitionEngine(rekognition.NewFromConfig(awsCfg)), nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}

package commands

import (
	"fmt"
	"os"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/spf13/cobra"
)

// BuildInfo 构建信息，由 main 通过 ldflags 注入
type BuildInfo struct {
	Version   string
	BuildTime string
	BuildID   string
	GitCommit string
	GitBranch string
}

var (
	configPath string
	cfg        *config.Config
	build      BuildInfo
)

func Execute(info BuildInfo) error {
	build = info

	root := &cobra.Command{
		Use:          "pixflow",
		Short:        "Image utilities: background removal, upscaling, OCR, memes and QR codes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded

			if err := utils.InitLogger(cfg.Server.Mode); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.Sync()
		},
		// 不带子命令时启动服务
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "config file (YAML)")

	root.AddCommand(
		serveCmd(),
		versionCmd(),
		upscaleCmd(),
		compositeCmd(),
		removeBGCmd(),
		ocrCmd(),
		qrCmd(),
		memeCmd(),
	)
	return root.Execute()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("version:    %s\nbuild_time: %s\nbuild_id:   %s\ngit_commit: %s\ngit_branch: %s\n",
				build.Version, build.BuildTime, build.BuildID, build.GitCommit, build.GitBranch)
			return nil
		},
	}
}

// readImageFile 读取并校验本地图片，规则与上传接口一致
func readImageFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > cfg.Upload.MaxBytes() {
		return nil, fmt.Errorf("%s: file too large (max %dMB)", path, cfg.Upload.MaxSizeMB)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
	return nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/spf13/cobra"
)

// composite <input>: 用分割掩码去背景，未提供掩码时使用本地分割器
func compositeCmd() *cobra.Command {
	var (
		segmentsPath string
		output       string
	)
	cmd := &cobra.Command{
		Use:   "composite <input>",
		Short: "Remove the background using segmentation masks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImageFile(args[0])
			if err != nil {
				return err
			}
			img, err := service.DecodeImage(data)
			if err != nil {
				return err
			}

			var segments []model.Segment
			if segmentsPath != "" {
				raw, err := os.ReadFile(segmentsPath)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &segments); err != nil {
					return fmt.Errorf("%w: %v", service.ErrMalformedMask, err)
				}
			} else {
				segmenter, err := service.NewSegmenter(&cfg.Segmenter)
				if err != nil {
					return err
				}
				img = service.FitForSegmentation(img, cfg.Compositor.MaxDimension)
				if segments, err = segmenter.Segment(cmd.Context(), img); err != nil {
					return err
				}
			}

			out, err := service.NewMaskCompositor(&cfg.Compositor).Composite(img, segments)
			if err != nil {
				return err
			}
			return writeOutput(output, out)
		},
	}
	cmd.Flags().StringVar(&segmentsPath, "segments", "", "JSON file with [{label, mask}] segments")
	cmd.Flags().StringVarP(&output, "output", "o", "removed-background.png", "output file")
	return cmd
}

// removebg <input>: 调用远程去背景接口
func removeBGCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "removebg <input>",
		Short: "Remove the background through the remote API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImageFile(args[0])
			if err != nil {
				return err
			}
			img, err := service.DecodeImage(data)
			if err != nil {
				return err
			}
			out, _, err := service.NewRemoveBGClient(&cfg.RemoveBG).Remove(cmd.Context(), img)
			if err != nil {
				return err
			}
			return writeOutput(output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "removed-background.png", "output file")
	return cmd
}

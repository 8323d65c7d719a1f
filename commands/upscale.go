package commands

import (
	"fmt"

	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/spf13/cobra"
)

// upscale <input>: 本地放大图片
func upscaleCmd() *cobra.Command {
	var (
		scale  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "upscale <input>",
		Short: "Upscale an image by an integer factor and sharpen it",
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
			out, err := service.NewUpscaler(&cfg.Upscaler).UpscaleJPEG(img, scale)
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("upscaled-%dx.jpg", scale)
			}
			return writeOutput(output, out)
		},
	}
	cmd.Flags().IntVarP(&scale, "scale", "s", 2, "upscale factor (1, 2, 4 or 8)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default upscaled-<k>x.jpg)")
	return cmd
}

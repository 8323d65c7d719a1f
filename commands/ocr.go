package commands

import (
	"fmt"

	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/spf13/cobra"
)

// ocr <input>: 识别图片文字并打印
func ocrCmd() *cobra.Command {
	var (
		language string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "ocr <input>",
		Short: "Extract text from an image",
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
			engine, err := newOCREngine(cmd.Context(), &cfg.OCR)
			if err != nil {
				return err
			}
			result, err := service.NewOCRService(&cfg.OCR, engine).Extract(cmd.Context(), img, utils.BytesMD5(data), language)
			if err != nil {
				return err
			}
			if output != "" {
				return writeOutput(output, []byte(result.Text))
			}
			fmt.Println(result.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language code (eng, hin, spa)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write text to a file instead of stdout")
	return cmd
}

package commands

import (
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/spf13/cobra"
)

// qr: 生成二维码
func qrCmd() *cobra.Command {
	var (
		req    model.QRRequest
		margin int
		output string
	)
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Generate a QR code (url, text, sms or phone)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("margin") {
				req.Margin = &margin
			}
			payload, err := service.BuildQRPayload(req)
			if err != nil {
				return err
			}
			enc := service.NewQREncoder(&cfg.QRCode)
			opts, err := enc.Options(req)
			if err != nil {
				return err
			}
			data, _, err := enc.Encode(payload, opts)
			if err != nil {
				return err
			}
			if output == "" {
				output = "qrcode." + opts.Format
			}
			return writeOutput(output, data)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Type, "type", "t", "url", "content type: url, text, sms or phone")
	f.StringVarP(&req.Value, "value", "v", "", "url or text to encode")
	f.StringVar(&req.Phone, "phone", "", "phone number (sms, phone)")
	f.StringVar(&req.Message, "message", "", "sms message")
	f.StringVar(&req.Foreground, "fg", "", "foreground color (#rrggbb)")
	f.StringVar(&req.Background, "bg", "", "background color (#rrggbb)")
	f.IntVar(&margin, "margin", 0, "margin in pixels")
	f.IntVar(&req.Size, "size", 0, "code size in pixels")
	f.StringVar(&req.Level, "level", "", "error correction: low, medium, high, highest")
	f.StringVar(&req.Format, "format", "png", "output format: png or svg")
	f.StringVarP(&output, "output", "o", "", "output file (default qrcode.<format>)")
	return cmd
}

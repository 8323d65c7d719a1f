package commands

import (
	"fmt"
	"image"

	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/service"
	"github.com/spf13/cobra"
)

// meme [input]: 本地图片或 --template 模板加上下文字
func memeCmd() *cobra.Command {
	var (
		req         model.MemeRequest
		strokeWidth int
		output      string
	)
	cmd := &cobra.Command{
		Use:   "meme [input]",
		Short: "Draw top and bottom captions on an image or template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := service.NewMemeGenerator(&cfg.Meme)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("stroke-width") {
				req.StrokeWidth = &strokeWidth
			}

			var data []byte
			switch {
			case len(args) == 1:
				if data, err = readImageFile(args[0]); err != nil {
					return err
				}
			case req.TemplateID != "":
				tmpl, ok := gen.Template(req.TemplateID)
				if !ok {
					return fmt.Errorf("unknown template %q", req.TemplateID)
				}
				fetcher := service.NewFetcher(cfg.Meme.FetchTimeout, cfg.Upload.MaxBytes())
				if data, err = fetcher.Fetch(cmd.Context(), tmpl.URL); err != nil {
					return err
				}
			default:
				return fmt.Errorf("an input image or --template is required")
			}

			var img image.Image
			if img, err = service.DecodeImage(data); err != nil {
				return err
			}
			out, err := gen.Generate(img, req)
			if err != nil {
				return err
			}
			return writeOutput(output, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.TemplateID, "template", "", "template id (drake, distracted, button, change, doge)")
	f.StringVar(&req.TopText, "top", "", "top text")
	f.StringVar(&req.BottomText, "bottom", "", "bottom text")
	f.StringVar(&req.FontFamily, "font", "Impact", "font family: Impact, Arial, Helvetica, Comic Sans MS")
	f.Float64Var(&req.FontSize, "font-size", 0, "font size in pixels (16-72)")
	f.StringVar(&req.TextColor, "color", "", "text color (#rrggbb)")
	f.StringVar(&req.StrokeColor, "stroke-color", "", "stroke color (#rrggbb)")
	f.IntVar(&strokeWidth, "stroke-width", 2, "stroke width (0-6)")
	f.StringVarP(&output, "output", "o", "meme.png", "output file")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/photo-effects-mcp/internal/config"
	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	"github.com/ironsheep/photo-effects-mcp/internal/framing"
	"github.com/ironsheep/photo-effects-mcp/internal/imaging"
	"github.com/ironsheep/photo-effects-mcp/internal/pipeline"
)

// render flags
var (
	renderOutputFlag  string
	renderRequestFlag string
	renderSeedFlag    uint64
	renderPreviewFlag string
	renderMaskFlag    string
	renderAnalyzeFlag bool
)

var renderCmd = &cobra.Command{
	Use:   "render <photo>",
	Short: "Render a photo once and write a PNG",
	Long: `Render a photo through the effects pipeline and write the result as PNG.

Settings come from a TOML request file; omitted keys keep their defaults.
By default the photo is rendered at export resolution.

Example request file:

  seed = 7

  [framing]
  ratio = "16:9"
  scale = 1.2

  [effect]
  kind = "glitch"

  [effect.glitch]
  level = 3
  intensity = 40

Examples:
  photofx-mcp render photo.jpg --request look.toml
  photofx-mcp render photo.jpg --request look.toml --preview 1280x800 -o preview.png
  photofx-mcp render portrait.jpg --request blur.toml --analyze`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutputFlag, "output", "o", pipeline.ExportFileName, "Output PNG file")
	renderCmd.Flags().StringVarP(&renderRequestFlag, "request", "r", "", "TOML render request")
	renderCmd.Flags().Uint64Var(&renderSeedFlag, "seed", 0, "Random seed; overrides the request file")
	renderCmd.Flags().StringVar(&renderPreviewFlag, "preview", "", "Render a preview fitted to WIDTHxHEIGHT instead of the export size")
	renderCmd.Flags().StringVar(&renderMaskFlag, "mask", "", "SVG path (100x100 space) of the subject for portrait_blur")
	renderCmd.Flags().BoolVar(&renderAnalyzeFlag, "analyze", false, "Run mask or point analysis when the effect needs it")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, fonts, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	photo, err := decodePhoto(args[0])
	if err != nil {
		return err
	}

	req, err := loadRequest(cmd, cfg)
	if err != nil {
		return err
	}
	if renderAnalyzeFlag {
		if req, err = analyzeFor(ctx, cfg, photo, req); err != nil {
			return err
		}
	}

	start := time.Now()
	p := pipeline.New(fonts)
	var data []byte
	var width, height int
	if renderPreviewFlag != "" {
		var cw, ch int
		if _, err := fmt.Sscanf(renderPreviewFlag, "%dx%d", &cw, &ch); err != nil {
			return fmt.Errorf("invalid --preview %q, want WIDTHxHEIGHT", renderPreviewFlag)
		}
		req.Output = framing.Preview(cw, ch)
		res, err := p.Render(ctx, photo.Image, req)
		if err != nil {
			return err
		}
		if data, err = imaging.EncodePNG(res.Image); err != nil {
			return err
		}
		width, height = res.Image.Bounds().Dx(), res.Image.Bounds().Dy()
	} else {
		exp, err := p.Export(ctx, photo.Image, req)
		if err != nil {
			return err
		}
		data, width, height = exp.Data, exp.Width, exp.Height
	}

	if err := os.WriteFile(renderOutputFlag, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info().
		Str("output", renderOutputFlag).
		Int("width", width).
		Int("height", height).
		Uint64("seed", req.Seed).
		Dur("duration", time.Since(start)).
		Msg("Render complete")
	return nil
}

func decodePhoto(path string) (*imaging.Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	photo, err := imaging.Decode(f)
	if err != nil {
		return nil, err
	}
	photo.Path = path
	return photo, nil
}

func loadRequest(cmd *cobra.Command, cfg config.Config) (pipeline.Request, error) {
	req := pipeline.DefaultRequest(cfg.Preview.Width, cfg.Preview.Height)
	if renderRequestFlag != "" {
		f, err := os.Open(renderRequestFlag)
		if err != nil {
			return req, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		if req, err = pipeline.DecodeRequest(f, req); err != nil {
			return req, fmt.Errorf("%s: %w", renderRequestFlag, err)
		}
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = renderSeedFlag
	}
	if renderMaskFlag != "" {
		if _, err := effects.ParsePath(renderMaskFlag); err != nil {
			return req, fmt.Errorf("invalid --mask: %w", err)
		}
		// The flag wins over a mask carried in the request file.
		req.Effect = req.Effect.ReplaceMask(&effects.Mask{PathData: renderMaskFlag})
	}
	return req, nil
}

// analyzeFor fills in the mask or anchor points the selected effect needs
// when the request does not already carry them.
func analyzeFor(ctx context.Context, cfg config.Config, photo *imaging.Photo, req pipeline.Request) (pipeline.Request, error) {
	masks, points := analyzers(ctx, cfg)
	sel := req.Effect

	switch sel.Kind {
	case effects.KindPortraitBlur:
		if sel.PortraitBlur != nil && sel.PortraitBlur.Mask != nil {
			return req, nil
		}
		if masks == nil {
			return req, fmt.Errorf("mask analysis requires a Gemini API key")
		}
		m, err := masks.AnalyzeMask(ctx, photo.Image)
		if err != nil {
			return req, err
		}
		req.Effect = sel.WithMask(m)
	case effects.KindStructure:
		if sel.Structure != nil && len(sel.Structure.Points) > 0 {
			return req, nil
		}
		pts, err := points.AnalyzePoints(ctx, photo.Image)
		if err != nil {
			return req, err
		}
		req.Effect = sel.WithPoints(pts)
	}
	return req, nil
}

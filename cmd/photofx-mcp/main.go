package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/photo-effects-mcp/internal/analysis"
	"github.com/ironsheep/photo-effects-mcp/internal/config"
	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	"github.com/ironsheep/photo-effects-mcp/internal/logging"
	"github.com/ironsheep/photo-effects-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// CLI flags
var (
	configFlag   string
	logLevelFlag string
)

// rootCmd is the main Cobra command for the CLI. Without a subcommand it
// runs the MCP server.
var rootCmd = &cobra.Command{
	Use:   "photofx-mcp",
	Short: "MCP server for photo effects",
	Long: `photofx-mcp renders photos through a fixed effects pipeline: framing,
color grade, one creative effect, optional halftone and film grain.

It speaks the MCP protocol over stdin/stdout; configure it in your MCP
client (e.g., Claude Desktop). The render subcommand runs the same
pipeline once from the command line.

Environment variables:
  PHOTOFX_LOG_LEVEL        debug, info, warn or error
  GEMINI_API_KEY           enables AI subject masks and anchor points
  PHOTOFX_GEMINI_MODEL     Gemini model name
  PHOTOFX_PREVIEW_WIDTH    default preview container width
  PHOTOFX_PREVIEW_HEIGHT   default preview container height
  PHOTOFX_FONT_DIR         directory of extra .ttf/.otf fonts`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("photofx-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	rootCmd.Version = Version

	rootCmd.AddCommand(serveCmd, renderCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and initializes logging and fonts.
func setup() (config.Config, *effects.FontBook, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return cfg, nil, err
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	logging.Init(cfg.LogLevel)

	fonts := effects.DefaultFonts()
	if cfg.FontDir != "" {
		fonts = effects.NewFontBook()
		n, err := fonts.LoadDir(cfg.FontDir)
		if err != nil {
			return cfg, nil, err
		}
		log.Info().Str("dir", cfg.FontDir).Int("fonts", n).Msg("Loaded extra fonts")
	}
	return cfg, fonts, nil
}

// analyzers picks the analysis backends: Gemini for both when a key is
// configured, otherwise local edge points and no mask analyzer.
func analyzers(ctx context.Context, cfg config.Config) (analysis.MaskAnalyzer, analysis.PointAnalyzer) {
	if !cfg.GeminiEnabled() {
		log.Info().Msg("No Gemini API key; mask analysis disabled, using local point analysis")
		return nil, analysis.EdgePoints{}
	}
	g, err := analysis.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Warn().Err(err).Msg("Gemini unavailable; using local point analysis")
		return nil, analysis.EdgePoints{}
	}
	log.Info().Str("model", g.Model()).Msg("Gemini analysis enabled")
	return g, g
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, fonts, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("Photo effects MCP server starting")

	masks, points := analyzers(ctx, cfg)
	srv := server.New(server.Options{
		PreviewWidth:  cfg.Preview.Width,
		PreviewHeight: cfg.Preview.Height,
		Fonts:         fonts,
		Masks:         masks,
		Points:        points,
		Version:       Version,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

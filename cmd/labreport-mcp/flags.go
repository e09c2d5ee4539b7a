package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ironsheep/labreport-mcp/internal/detection"
	"github.com/ironsheep/labreport-mcp/internal/imaging"
	"github.com/ironsheep/labreport-mcp/internal/logging"
)

func globalFlags() []cli.Flag {
	det := detection.DefaultConfig()
	pre := imaging.DefaultPreprocessConfig()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Sources: cli.EnvVars("LABREPORT_LOG_LEVEL"),
			Usage:   "log level: debug, info, warn or error (logs go to stderr)",
		},
		&cli.StringFlag{
			Name:    "lang",
			Value:   det.OCR.Language,
			Sources: cli.EnvVars("LABREPORT_OCR_LANG"),
			Usage:   "Tesseract language(s), joined with + (e.g. eng+deu)",
		},
		&cli.IntFlag{
			Name:    "psm",
			Value:   det.OCR.PageSegMode,
			Sources: cli.EnvVars("LABREPORT_OCR_PSM"),
			Usage:   "Tesseract page segmentation mode (0-13)",
		},
		&cli.FloatFlag{
			Name:    "min-confidence",
			Value:   det.OCR.MinConfidence,
			Sources: cli.EnvVars("LABREPORT_OCR_MIN_CONFIDENCE"),
			Usage:   "drop OCR words below this confidence (0-1)",
		},
		&cli.StringFlag{
			Name:    "tessdata-prefix",
			Sources: cli.EnvVars("TESSDATA_PREFIX"),
			Usage:   "directory holding *.traineddata (default: Tesseract's own search path)",
		},
		&cli.BoolFlag{
			Name:  "implicit-rows",
			Value: det.ImplicitRows,
			Usage: "group words into rows by position instead of by horizontal rulings",
		},
		&cli.BoolFlag{
			Name:  "borderless",
			Value: det.BorderlessTables,
			Usage: "detect tables without vertical rulings from column whitespace",
		},
		&cli.IntFlag{
			Name:    "min-width",
			Value:   pre.MinWidth,
			Sources: cli.EnvVars("LABREPORT_MIN_WIDTH"),
			Usage:   "upscale images narrower than this many pixels before OCR (0 disables)",
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logging.Init()
	if err := logging.SetLevel(cmd.String("log-level")); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// detectionConfig builds the OCR and table settings from flags.
func detectionConfig(cmd *cli.Command) (detection.Config, error) {
	cfg := detection.DefaultConfig()
	cfg.OCR.Language = cmd.String("lang")
	cfg.OCR.PageSegMode = cmd.Int("psm")
	cfg.OCR.MinConfidence = cmd.Float("min-confidence")
	cfg.OCR.TessdataPrefix = cmd.String("tessdata-prefix")
	cfg.ImplicitRows = cmd.Bool("implicit-rows")
	cfg.BorderlessTables = cmd.Bool("borderless")

	if err := cfg.OCR.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid OCR settings: %w", err)
	}
	return cfg, nil
}

// preprocessConfig builds the image cleanup settings from flags.
func preprocessConfig(cmd *cli.Command) (imaging.PreprocessConfig, error) {
	cfg := imaging.DefaultPreprocessConfig()
	cfg.MinWidth = cmd.Int("min-width")
	if cfg.MinWidth < 0 {
		return cfg, fmt.Errorf("min-width must not be negative, got %d", cfg.MinWidth)
	}
	return cfg, nil
}

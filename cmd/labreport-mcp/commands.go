package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ironsheep/labreport-mcp/internal/detection"
	"github.com/ironsheep/labreport-mcp/internal/imaging"
	"github.com/ironsheep/labreport-mcp/internal/labtable"
	"github.com/ironsheep/labreport-mcp/internal/logging"
	"github.com/ironsheep/labreport-mcp/internal/ocr"
	"github.com/ironsheep/labreport-mcp/internal/report"
	"github.com/ironsheep/labreport-mcp/internal/server"
)

// commands returns fresh subcommands. Flag values live on the command, so
// every app gets its own.
func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Serve MCP over stdin/stdout (the default)",
			Action: serve,
		},
		{
			Name:      "extract",
			Usage:     "Extract lab test records from image files",
			ArgsUsage: "FILE...",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "analysis",
					Usage: "print detected tables and per-table reports along with the result",
				},
			},
			Action: extract,
		},
		{
			Name:      "interpret",
			Usage:     "Interpret raw tables from a JSON file without OCR",
			ArgsUsage: "TABLES.json",
			Action:    interpret,
		},
		{
			Name:   "version",
			Usage:  "Print version and OCR engine information",
			Action: version,
		},
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	det, err := detectionConfig(cmd)
	if err != nil {
		return err
	}
	pre, err := preprocessConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.Logger(logging.SourceMCP)
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	srv := server.New(server.Options{
		Version:    Version,
		Preprocess: pre,
		Detection:  det,
		Logger:     logger,
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newProcessor(cmd *cli.Command) (*report.Processor, error) {
	det, err := detectionConfig(cmd)
	if err != nil {
		return nil, err
	}
	pre, err := preprocessConfig(cmd)
	if err != nil {
		return nil, err
	}
	return report.NewProcessor(
		imaging.NewPreprocessor(pre),
		detection.NewTableExtractor(det, logging.Logger(logging.SourceOCR)),
		logging.Logger(logging.SourcePipeline),
	), nil
}

// extractOutput is one line of `extract --analysis` output.
type extractOutput struct {
	File     string           `json:"file"`
	Analysis *report.Analysis `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`
	Result   labtable.Result  `json:"result"`
}

func extract(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errFileRequired
	}

	processor, err := newProcessor(cmd)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	failed := 0
	for _, file := range files {
		var v interface{}
		var ok bool
		if cmd.Bool("analysis") {
			entry := analyze(ctx, processor, file)
			v, ok = entry, entry.Result.Success
		} else {
			res := processor.ProcessFile(ctx, file)
			v, ok = res, res.Success
		}
		if !ok {
			failed++
		}
		if err := writeJSON(out, v); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errDocumentsFailed, failed, len(files))
	}
	return nil
}

func analyze(ctx context.Context, processor *report.Processor, file string) extractOutput {
	entry := extractOutput{File: file, Result: labtable.Failed()}

	data, err := os.ReadFile(file)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	a, err := processor.Analyze(ctx, data)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.Analysis = a
	entry.Result = a.Result
	return entry
}

func interpret(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errTablesFileRequired
	}

	var r io.Reader = cmd.Root().Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open tables file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var tables []labtable.RawTable
	if err := json.NewDecoder(r).Decode(&tables); err != nil {
		return fmt.Errorf("failed to decode tables: %w", err)
	}

	in := labtable.Interpreter{Logger: logging.Logger(logging.SourcePipeline)}
	return writeJSON(cmd.Root().Writer, in.Interpret(tables))
}

func version(ctx context.Context, cmd *cli.Command) error {
	det, err := detectionConfig(cmd)
	if err != nil {
		return err
	}
	info := ocr.GetOCRInfo(det.OCR)

	w := cmd.Root().Writer
	fmt.Fprintf(w, "labreport-mcp %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Tesseract:  %s (%s)\n", orUnknown(info.Version), info.Backend)
	fmt.Fprintf(w, "  Languages:  %s\n", det.OCR.Language)
	if info.Error != "" {
		fmt.Fprintf(w, "  OCR error:  %s\n", info.Error)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

package detection

import (
	"context"
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/ironsheep/labreport-mcp/internal/labtable"
	"github.com/ironsheep/labreport-mcp/internal/ocr"
)

// WordRecognizer finds words in an image. *ocr.Recognizer implements it.
type WordRecognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]ocr.Word, error)
}

// TableExtractor finds tables in a preprocessed page.
type TableExtractor struct {
	Config     Config
	Recognizer WordRecognizer
	Logger     *log.Logger
}

// NewTableExtractor returns a TableExtractor backed by Tesseract. logger may
// be nil.
func NewTableExtractor(cfg Config, logger *log.Logger) *TableExtractor {
	return &TableExtractor{
		Config:     cfg,
		Recognizer: ocr.NewRecognizer(cfg.OCR, logger),
		Logger:     logger,
	}
}

// DetectTables recognizes words in img, detects its rulings and assembles
// tables. img must be binary with black ink on white paper.
func (e *TableExtractor) DetectTables(ctx context.Context, img *image.Gray) ([]Table, error) {
	words, err := e.Recognizer.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("word recognition failed: %w", err)
	}

	rulings := DetectRulings(img, e.Config.RulingMinFraction)
	tables := BuildTables(words, rulings, e.Config)

	if e.Logger != nil {
		e.Logger.Debug("tables detected", "words", len(words), "rulings", len(rulings), "tables", len(tables))
	}
	return tables, nil
}

// ExtractTables is DetectTables without the layout metadata.
func (e *TableExtractor) ExtractTables(ctx context.Context, img *image.Gray) ([]labtable.RawTable, error) {
	tables, err := e.DetectTables(ctx, img)
	if err != nil {
		return nil, err
	}
	raw := make([]labtable.RawTable, len(tables))
	for i, t := range tables {
		raw[i] = t.RawTable
	}
	return raw, nil
}

// Package report runs the full lab-report pipeline on one document:
// decode, preprocess, table extraction and interpretation.
package report

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/ironsheep/labreport-mcp/internal/imaging"
	"github.com/ironsheep/labreport-mcp/internal/labtable"
)

// ErrExtraction is returned when the table extractor fails on a document.
var ErrExtraction = errors.New("table extraction failed")

// Preprocessor cleans a decoded image for OCR.
type Preprocessor interface {
	Preprocess(img image.Image) *image.Gray
}

// TableExtractor finds raw tables in a preprocessed image.
type TableExtractor interface {
	ExtractTables(ctx context.Context, img *image.Gray) ([]labtable.RawTable, error)
}

// Analysis is everything the pipeline learned about one document.
type Analysis struct {
	DocumentID string                 `json:"document_id"`
	Image      *imaging.ImageInfo     `json:"image"`
	Tables     []labtable.RawTable    `json:"tables"`
	Reports    []labtable.TableReport `json:"reports"`
	Result     labtable.Result        `json:"result"`
}

// Processor runs documents through a Preprocessor, a TableExtractor and a
// labtable.Interpreter. It keeps no state between documents and is safe for
// concurrent use when its collaborators are.
type Processor struct {
	Preprocessor Preprocessor
	Extractor    TableExtractor
	Logger       *log.Logger
}

// NewProcessor returns a Processor. logger may be nil.
func NewProcessor(pre Preprocessor, ext TableExtractor, logger *log.Logger) *Processor {
	return &Processor{Preprocessor: pre, Extractor: ext, Logger: logger}
}

// Process interprets one encoded image and always returns a Result.
//
// Any document-level failure (undecodable bytes, extractor error, canceled
// context) yields is_success=false with no records. Finding zero tables or
// zero usable rows is not a failure.
func (p *Processor) Process(ctx context.Context, data []byte) labtable.Result {
	a, err := p.Analyze(ctx, data)
	if err != nil {
		return labtable.Failed()
	}
	return a.Result
}

// ProcessFile is Process on the contents of path. An unreadable file yields a
// failed Result.
func (p *Processor) ProcessFile(ctx context.Context, path string) labtable.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger().Warn("cannot read document", "path", path, "err", err)
		return labtable.Failed()
	}
	return p.Process(ctx, data)
}

// Analyze runs the pipeline and returns the intermediate tables and per-table
// reports along with the Result. Errors wrap imaging.ErrDecode or
// ErrExtraction, or are the context's error.
func (p *Processor) Analyze(ctx context.Context, data []byte) (*Analysis, error) {
	id := uuid.NewString()
	logger := p.logger().With("document", id)
	start := time.Now()

	img, info, err := imaging.DecodeWithInfo(data)
	if err != nil {
		logger.Warn("decode failed", "err", err)
		return nil, err
	}
	logger.Debug("decoded", "format", info.Format, "width", info.Width, "height", info.Height)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bin := p.Preprocessor.Preprocess(img)
	logger.Debug("preprocessed", "width", bin.Bounds().Dx(), "height", bin.Bounds().Dy())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tables, err := p.Extractor.ExtractTables(ctx, bin)
	if err != nil {
		logger.Warn("table extraction failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if tables == nil {
		tables = []labtable.RawTable{}
	}

	res, reports := labtable.Interpreter{Logger: logger}.InterpretWithReports(tables)
	logger.Info("document processed",
		"tables", len(tables),
		"records", len(res.Records),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &Analysis{
		DocumentID: id,
		Image:      info,
		Tables:     tables,
		Reports:    reports,
		Result:     res,
	}, nil
}

func (p *Processor) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return discard
}

var discard = log.New(io.Discard)

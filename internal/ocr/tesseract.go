package ocr

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ironsheep/labreport-mcp/internal/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Config holds the Tesseract settings for one recognition run.
type Config struct {
	// Language is a Tesseract language code, or several joined with "+"
	// (e.g. "eng+deu").
	Language string `json:"language"`

	// PageSegMode is the Tesseract page segmentation mode. 6 treats the page
	// as a single uniform block of text, which suits tabular reports.
	PageSegMode int `json:"page_seg_mode"`

	// MinConfidence drops words whose confidence (0..1) is below it.
	MinConfidence float64 `json:"min_confidence"`

	// TessdataPrefix is the directory holding *.traineddata. Empty uses the
	// engine default.
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

// DefaultConfig returns the settings used for lab reports.
func DefaultConfig() Config {
	return Config{
		Language:      "eng",
		PageSegMode:   int(gosseract.PSM_SINGLE_BLOCK),
		MinConfidence: 0.30,
	}
}

// Validate reports configuration errors before the engine is started.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("ocr language must not be empty")
	}
	if c.PageSegMode < int(gosseract.PSM_OSD_ONLY) || c.PageSegMode > int(gosseract.PSM_RAW_LINE) {
		return fmt.Errorf("page segmentation mode %d out of range 0-13", c.PageSegMode)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence %.2f out of range 0-1", c.MinConfidence)
	}
	return nil
}

func (c Config) languages() []string {
	return strings.Split(c.Language, "+")
}

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// BoundsFromRect converts an image.Rectangle.
func BoundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect returns the bounds as an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Width returns X2 - X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// CenterY returns the vertical midpoint.
func (b Bounds) CenterY() float64 { return float64(b.Y1+b.Y2) / 2 }

// Word is one recognized word.
type Word struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the image.
	Bounds Bounds `json:"bounds"`
}

// Recognizer runs Tesseract word recognition.
type Recognizer struct {
	Config Config
	Logger *log.Logger
}

// NewRecognizer returns a Recognizer for cfg. logger may be nil.
func NewRecognizer(cfg Config, logger *log.Logger) *Recognizer {
	return &Recognizer{Config: cfg, Logger: logger}
}

// Recognize returns the words Tesseract finds in img, filtered by
// FilterWords. Word bounds are in img's coordinate space.
//
// The image is handed to Tesseract as in-memory PNG bytes; no temporary
// files are written. Tesseract itself cannot be interrupted, so ctx is only
// checked before the engine starts.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.Config.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.Config.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(r.Config.languages()...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(r.Config.PageSegMode)); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	offset := img.Bounds().Min
	words := FilterWords(wordsFromBoxes(boxes, offset), r.Config.MinConfidence)
	if r.Logger != nil {
		r.Logger.Debug("ocr complete", "boxes", len(boxes), "words", len(words), "lang", r.Config.Language, "psm", r.Config.PageSegMode)
	}
	return words, nil
}

// wordsFromBoxes converts Tesseract boxes, scaling confidence from 0-100 to
// 0-1 and shifting bounds by offset.
func wordsFromBoxes(boxes []gosseract.BoundingBox, offset image.Point) []Word {
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, Word{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds:     BoundsFromRect(box.Box.Add(offset)),
		})
	}
	return words
}

// FilterWords drops blank words and words below minConfidence, and trims
// surrounding whitespace from the rest. Order is preserved.
func FilterWords(words []Word, minConfidence float64) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || w.Confidence < minConfidence {
			continue
		}
		w.Text = text
		out = append(out, w)
	}
	return out
}

// TesseractVersion returns the installed Tesseract version.
func TesseractVersion() string {
	return gosseract.Version()
}

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available          bool     `json:"available"`
	Version            string   `json:"version,omitempty"`
	Error              string   `json:"error,omitempty"`
	Backend            string   `json:"backend"`
	Config             Config   `json:"config"`
	AvailableLanguages []string `json:"available_languages,omitempty"`
}

// GetOCRInfo reports whether Tesseract is usable with cfg.
//
// The engine counts as available when its version can be read and every
// configured language has training data in the default search path (or in
// cfg.TessdataPrefix when set).
func GetOCRInfo(cfg Config) OCRInfo {
	info := OCRInfo{
		Backend: "gosseract",
		Config:  cfg,
		Version: TesseractVersion(),
	}
	if info.Version == "" {
		info.Error = "tesseract version unavailable"
		return info
	}

	langs, err := availableLanguages(cfg.TessdataPrefix)
	if err != nil {
		info.Error = fmt.Sprintf("failed to list languages: %v", err)
		return info
	}
	info.AvailableLanguages = langs

	if missing := missingLanguages(cfg.languages(), langs); len(missing) > 0 {
		info.Error = fmt.Sprintf("missing training data for: %s", strings.Join(missing, ", "))
		return info
	}

	info.Available = true
	return info
}

// availableLanguages lists the training data in prefix, or in the engine's
// default search path when prefix is empty.
func availableLanguages(prefix string) ([]string, error) {
	if prefix == "" {
		return gosseract.GetAvailableLanguages()
	}
	files, err := filepath.Glob(filepath.Join(prefix, "*.traineddata"))
	if err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(files))
	for _, f := range files {
		langs = append(langs, strings.TrimSuffix(filepath.Base(f), ".traineddata"))
	}
	return langs, nil
}

func missingLanguages(want, have []string) []string {
	index := make(map[string]bool, len(have))
	for _, l := range have {
		index[l] = true
	}
	var missing []string
	for _, l := range want {
		if !index[l] {
			missing = append(missing, l)
		}
	}
	return missing
}

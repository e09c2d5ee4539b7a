package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// PreprocessConfig controls the cleanup applied before OCR.
type PreprocessConfig struct {
	// MinWidth is the width below which the image is upscaled (Lanczos,
	// aspect ratio kept). Zero disables upscaling.
	MinWidth int `json:"min_width"`

	// DenoiseRadius is the median filter radius. A radius of R uses a
	// (2R+1)x(2R+1) window.
	DenoiseRadius float64 `json:"denoise_radius"`

	// BlockRadius is the Gaussian radius used for the local mean of the
	// adaptive threshold. The default of 5 corresponds to an 11 px block.
	BlockRadius float64 `json:"block_radius"`

	// ThresholdC is subtracted from the local mean. A pixel is ink when it is
	// darker than mean - ThresholdC.
	ThresholdC float64 `json:"threshold_c"`

	// OpenRadius is the radius of the erode+dilate opening that removes
	// specks. Zero leaves the image unchanged.
	OpenRadius float64 `json:"open_radius"`

	// DilateRadius thickens strokes after thresholding. 0.5 is a 2x2 window.
	DilateRadius float64 `json:"dilate_radius"`
}

// DefaultPreprocessConfig returns the settings used for lab reports.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		MinWidth:      1000,
		DenoiseRadius: 1,
		BlockRadius:   5,
		ThresholdC:    2,
		OpenRadius:    0,
		DilateRadius:  0.5,
	}
}

// Preprocessor cleans report images for OCR.
type Preprocessor struct {
	Config PreprocessConfig
}

// NewPreprocessor returns a Preprocessor using cfg.
func NewPreprocessor(cfg PreprocessConfig) *Preprocessor {
	return &Preprocessor{Config: cfg}
}

// Preprocess converts img into a binary image with black ink on white paper.
//
// The steps are:
//  1. Upscale to MinWidth if the image is narrower.
//  2. Convert to perceptual grayscale (CIE L*).
//  3. Median-filter to remove sensor noise while keeping stroke edges.
//  4. Adaptive threshold against a Gaussian-weighted local mean. Ink becomes
//     white on black at this stage.
//  5. Morphological opening, then dilation, on the inverted image.
//  6. Invert back to black on white.
//
// The output always has its origin at (0,0).
func (p *Preprocessor) Preprocess(img image.Image) *image.Gray {
	cfg := p.Config

	if cfg.MinWidth > 0 && img.Bounds().Dx() < cfg.MinWidth {
		img = imaging.Resize(img, cfg.MinWidth, 0, imaging.Lanczos)
	}

	gray := Lightness(img)
	smooth := effect.Median(gray, cfg.DenoiseRadius)
	mean := blur.Gaussian(smooth, cfg.BlockRadius)

	inkMask := adaptiveThreshold(smooth, mean, cfg.ThresholdC)

	var cleaned image.Image = inkMask
	if cfg.OpenRadius > 0 {
		cleaned = effect.Dilate(effect.Erode(cleaned, cfg.OpenRadius), cfg.OpenRadius)
	}
	if cfg.DilateRadius > 0 {
		cleaned = effect.Dilate(cleaned, cfg.DilateRadius)
	}

	return toGray(effect.Invert(cleaned))
}

// Lightness converts img to grayscale using the CIE L* channel, which tracks
// perceived brightness better than a plain RGB average. Fully transparent
// pixels become white paper.
func Lightness(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			v := uint8(255)
			if ok {
				l, _, _ := c.Lab()
				v = clampByte(l * 255)
			}
			out.Pix[(y-b.Min.Y)*out.Stride+(x-b.Min.X)] = v
		}
	}
	return out
}

// adaptiveThreshold marks a pixel as ink (255) when it is darker than its
// local mean minus c, and as background (0) otherwise. Both inputs are
// grayscale images stored as RGBA, so only the red channel is read.
func adaptiveThreshold(src, mean *image.RGBA, c float64) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := float64(src.Pix[y*src.Stride+x*4])
			m := float64(mean.Pix[y*mean.Stride+x*4])
			if v < m-c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

func toGray(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.Gray{Y: img.Pix[y*img.Stride+x*4]})
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

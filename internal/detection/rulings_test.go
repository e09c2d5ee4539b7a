package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPage returns a white binary page.
func createPage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func drawHLine(img *image.Gray, y, x1, x2, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := x1; x < x2; x++ {
			img.SetGray(x, y+t, color.Gray{})
		}
	}
}

func drawVLine(img *image.Gray, x, y1, y2, thickness int) {
	for t := 0; t < thickness; t++ {
		for y := y1; y < y2; y++ {
			img.SetGray(x+t, y, color.Gray{})
		}
	}
}

func TestDetectRulings_Crossing(t *testing.T) {
	img := createPage(200, 100)
	drawHLine(img, 50, 0, 200, 3)
	drawVLine(img, 20, 0, 100, 2)

	rulings := DetectRulings(img, 0.5)
	require.Len(t, rulings, 2)

	h := rulings[0]
	assert.Equal(t, Horizontal, h.Orientation)
	assert.Equal(t, 51, h.Pos)
	assert.Equal(t, 3, h.Thickness)
	assert.Equal(t, 0, h.Start)
	assert.Equal(t, 200, h.End)

	v := rulings[1]
	assert.Equal(t, Vertical, v.Orientation)
	assert.Equal(t, 20, v.Pos)
	assert.Equal(t, 2, v.Thickness)
	assert.Equal(t, 100, v.Length())
}

func TestDetectRulings_IgnoresShortAndBrokenLines(t *testing.T) {
	img := createPage(200, 100)
	drawHLine(img, 20, 10, 70, 1) // 30% of the width
	for x := 0; x < 200; x += 10 {
		drawHLine(img, 60, x, x+6, 1) // dashed
	}

	assert.Empty(t, DetectRulings(img, 0.5))
}

func TestDetectRulings_SeparateParallelLines(t *testing.T) {
	img := createPage(300, 200)
	drawHLine(img, 40, 10, 290, 1)
	drawHLine(img, 41, 10, 290, 1)
	drawHLine(img, 100, 10, 290, 2)
	drawHLine(img, 160, 10, 290, 1)

	rulings := DetectRulings(img, 0.5)
	require.Len(t, rulings, 3)
	assert.Equal(t, []int{40, 100, 160}, []int{rulings[0].Pos, rulings[1].Pos, rulings[2].Pos})
	assert.Equal(t, 2, rulings[0].Thickness)
}

func TestDetectRulings_OffsetBounds(t *testing.T) {
	page := createPage(200, 100)
	drawHLine(page, 50, 0, 200, 1)
	sub := page.SubImage(image.Rect(10, 10, 200, 100)).(*image.Gray)

	rulings := DetectRulings(sub, 0.5)
	require.Len(t, rulings, 1)
	assert.Equal(t, 50, rulings[0].Pos)
	assert.Equal(t, 10, rulings[0].Start)
}

func TestDetectRulings_EmptyImage(t *testing.T) {
	assert.Nil(t, DetectRulings(image.NewGray(image.Rectangle{}), 0.5))
}

func TestOrientationString(t *testing.T) {
	assert.Equal(t, "horizontal", Horizontal.String())
	assert.Equal(t, "vertical", Vertical.String())
}

package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"braingraph/domain/core/valueobjects"
	"braingraph/interfaces/render"
)

var (
	black = color.RGBA{A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
)

func pt(x, y float64) valueobjects.Point { return valueobjects.Point{X: x, Y: y} }

func rgba(r *Raster, x, y int) color.RGBA {
	return r.Image().RGBAAt(x, y)
}

func TestRaster_FillCircle(t *testing.T) {
	r := New(40, 40)
	r.Clear(black)

	r.FillCircle(pt(20, 20), 8, red)

	assert.Equal(t, red, rgba(r, 20, 20))
	assert.Equal(t, red, rgba(r, 25, 20))
	assert.Equal(t, black, rgba(r, 30, 20))
	assert.Equal(t, black, rgba(r, 2, 2))
}

func TestRaster_StrokeCircleIsHollow(t *testing.T) {
	r := New(40, 40)
	r.Clear(black)

	r.StrokeCircle(pt(20, 20), 10, 2, red)

	assert.Equal(t, black, rgba(r, 20, 20))
	assert.NotEqual(t, black, rgba(r, 29, 20))
}

func TestRaster_StrokeLineAndQuad(t *testing.T) {
	r := New(60, 60)
	r.Clear(black)

	r.StrokeLine(pt(5, 10), pt(55, 10), 3, red)
	r.StrokeQuad(pt(5, 50), pt(30, 30), pt(55, 50), 3, red)

	assert.NotEqual(t, black, rgba(r, 30, 10))
	assert.Equal(t, black, rgba(r, 30, 20))
	assert.NotEqual(t, black, rgba(r, 30, 40))
}

func TestRaster_DrawImageMasksAndCachesScaledCopy(t *testing.T) {
	r := New(40, 40)
	r.Clear(black)
	thumb := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			thumb.SetRGBA(x, y, red)
		}
	}

	r.DrawImage(thumb, pt(20, 20), 10, 1)
	r.DrawImage(thumb, pt(20, 20), 10, 1)

	assert.Equal(t, red, rgba(r, 20, 20))
	assert.Equal(t, black, rgba(r, 11, 11))
	assert.Equal(t, 1, r.ScaledLen())
}

func TestRaster_TextDrawsAndMeasures(t *testing.T) {
	r := New(100, 30)
	r.Clear(black)

	r.FillText("Go", pt(50, 20), red, render.AlignCenter)

	assert.Equal(t, 14.0, r.TextWidth("Go"))
	painted := 0
	for x := 40; x < 60; x++ {
		for y := 8; y < 22; y++ {
			if rgba(r, x, y) != black {
				painted++
			}
		}
	}
	assert.Positive(t, painted)
}

func TestRaster_EncodePNG(t *testing.T) {
	r := New(16, 8)
	r.Clear(red)

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
}

func TestRaster_ZeroSizeIsClamped(t *testing.T) {
	r := New(0, -5)

	w, h := r.Size()

	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestRaster_PaintsARenderFrame(t *testing.T) {
	r := New(64, 64)
	bg := render.DarkTheme.Background

	r.Clear(bg)
	r.FillCircle(pt(32, 32), 6, render.DarkTheme.NodeColor(valueobjects.NodeTypeNote))
	r.FillRect(pt(0, 0), pt(8, 8), red)

	assert.NotEqual(t, bg, rgba(r, 32, 32))
	assert.Equal(t, red, rgba(r, 4, 4))
	assert.Equal(t, bg, rgba(r, 60, 60))
}

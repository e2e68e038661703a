// Package canvas is a software rasterizer implementing render.Canvas. It
// backs PNG snapshots for the preview server and the CLI.
package canvas

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"braingraph/domain/core/valueobjects"
	"braingraph/interfaces/render"
)

// kappa places cubic control points to approximate a quarter circle
const kappa = 0.5522847498

const (
	defaultScaledCapacity = 256
	quadSegments          = 16
)

type scaledKey struct {
	src  image.Image
	size int
}

// Raster paints into an RGBA image
type Raster struct {
	img    *image.RGBA
	face   font.Face
	z      *vector.Rasterizer
	scaled *lru.Cache[scaledKey, *image.RGBA]
}

// Option customizes a Raster
type Option func(*Raster)

// WithFace sets the label font
func WithFace(face font.Face) Option {
	return func(r *Raster) { r.face = face }
}

// WithScaledCache bounds the scaled-thumbnail cache
func WithScaledCache(size int) Option {
	return func(r *Raster) {
		if c, err := lru.New[scaledKey, *image.RGBA](size); err == nil {
			r.scaled = c
		}
	}
}

// New creates a width×height raster
func New(width, height int, opts ...Option) *Raster {
	width, height = max(width, 1), max(height, 1)
	scaled, _ := lru.New[scaledKey, *image.RGBA](defaultScaledCapacity)
	r := &Raster{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		face:   basicfont.Face7x13,
		z:      vector.NewRasterizer(width, height),
		scaled: scaled,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Image returns the backing image
func (r *Raster) Image() *image.RGBA { return r.img }

// EncodePNG writes the raster as PNG
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// Size implements render.Canvas
func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear implements render.Canvas
func (r *Raster) Clear(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect implements render.Canvas
func (r *Raster) FillRect(min, max valueobjects.Point, c color.Color) {
	rect := image.Rect(int(math.Floor(min.X)), int(math.Floor(min.Y)), int(math.Ceil(max.X)), int(math.Ceil(max.Y)))
	draw.Draw(r.img, rect.Intersect(r.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// FillCircle implements render.Canvas
func (r *Raster) FillCircle(center valueobjects.Point, radius float64, c color.Color) {
	if radius <= 0 {
		return
	}
	r.begin()
	circlePath(r.z, center, radius, false)
	r.fill(c)
}

// StrokeCircle implements render.Canvas as an annulus: the inner circle is
// wound the other way so it cancels out of the coverage
func (r *Raster) StrokeCircle(center valueobjects.Point, radius, width float64, c color.Color) {
	if radius <= 0 || width <= 0 {
		return
	}
	r.begin()
	circlePath(r.z, center, radius+width/2, false)
	if inner := radius - width/2; inner > 0 {
		circlePath(r.z, center, inner, true)
	}
	r.fill(c)
}

// StrokeLine implements render.Canvas
func (r *Raster) StrokeLine(from, to valueobjects.Point, width float64, c color.Color) {
	r.begin()
	segmentPath(r.z, from, to, width)
	r.fill(c)
}

// StrokeQuad implements render.Canvas by flattening the curve
func (r *Raster) StrokeQuad(from, ctrl, to valueobjects.Point, width float64, c color.Color) {
	r.begin()
	prev := from
	for i := 1; i <= quadSegments; i++ {
		t := float64(i) / quadSegments
		u := 1 - t
		next := valueobjects.Point{
			X: u*u*from.X + 2*u*t*ctrl.X + t*t*to.X,
			Y: u*u*from.Y + 2*u*t*ctrl.Y + t*t*to.Y,
		}
		segmentPath(r.z, prev, next, width)
		prev = next
	}
	r.fill(c)
}

// DrawImage implements render.Canvas: img is scaled to the circle's box and
// masked to the circle at opacity alpha
func (r *Raster) DrawImage(img image.Image, center valueobjects.Point, radius, alpha float64) {
	size := int(math.Ceil(radius * 2))
	if img == nil || size <= 0 || alpha <= 0 {
		return
	}
	scaled := r.scale(img, size)
	origin := image.Pt(int(math.Round(center.X-radius)), int(math.Round(center.Y-radius)))
	dst := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))}

	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	z := vector.NewRasterizer(size, size)
	circlePath(z, valueobjects.Point{X: radius, Y: radius}, radius, false)
	a := uint8(math.Round(math.Min(alpha, 1) * 255))
	z.Draw(mask, mask.Bounds(), image.NewUniform(color.Alpha{A: a}), image.Point{})

	draw.DrawMask(r.img, dst, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

// FillText implements render.Canvas. at is the text baseline anchor.
func (r *Raster) FillText(text string, at valueobjects.Point, c color.Color, align render.Align) {
	if text == "" {
		return
	}
	x := at.X
	switch align {
	case render.AlignCenter:
		x -= r.TextWidth(text) / 2
	case render.AlignRight:
		x -= r.TextWidth(text)
	}
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(int(math.Round(x))), Y: fixed.I(int(math.Round(at.Y)))},
	}
	d.DrawString(text)
}

// TextWidth implements render.Canvas
func (r *Raster) TextWidth(text string) float64 {
	return float64(font.MeasureString(r.face, text)) / 64
}

func (r *Raster) begin() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
}

func (r *Raster) fill(c color.Color) {
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (r *Raster) scale(img image.Image, size int) *image.RGBA {
	key := scaledKey{src: img, size: size}
	if r.scaled != nil {
		if cached, ok := r.scaled.Get(key); ok {
			return cached
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	if r.scaled != nil {
		r.scaled.Add(key, dst)
	}
	return dst
}

// ScaledLen reports how many scaled thumbnails are cached
func (r *Raster) ScaledLen() int {
	if r.scaled == nil {
		return 0
	}
	return r.scaled.Len()
}

func circlePath(z *vector.Rasterizer, c valueobjects.Point, radius float64, reverse bool) {
	k := radius * kappa
	cx, cy, rr := float32(c.X), float32(c.Y), float32(radius)
	kk := float32(k)
	z.MoveTo(cx+rr, cy)
	if !reverse {
		z.CubeTo(cx+rr, cy+kk, cx+kk, cy+rr, cx, cy+rr)
		z.CubeTo(cx-kk, cy+rr, cx-rr, cy+kk, cx-rr, cy)
		z.CubeTo(cx-rr, cy-kk, cx-kk, cy-rr, cx, cy-rr)
		z.CubeTo(cx+kk, cy-rr, cx+rr, cy-kk, cx+rr, cy)
	} else {
		z.CubeTo(cx+rr, cy-kk, cx+kk, cy-rr, cx, cy-rr)
		z.CubeTo(cx-kk, cy-rr, cx-rr, cy-kk, cx-rr, cy)
		z.CubeTo(cx-rr, cy+kk, cx-kk, cy+rr, cx, cy+rr)
		z.CubeTo(cx+kk, cy+rr, cx+rr, cy+kk, cx+rr, cy)
	}
	z.ClosePath()
}

// segmentPath adds a width-thick quad covering from→to
func segmentPath(z *vector.Rasterizer, from, to valueobjects.Point, width float64) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	half := math.Max(width, 0.5) / 2
	nx, ny := -dy/length*half, dx/length*half
	z.MoveTo(float32(from.X+nx), float32(from.Y+ny))
	z.LineTo(float32(to.X+nx), float32(to.Y+ny))
	z.LineTo(float32(to.X-nx), float32(to.Y-ny))
	z.LineTo(float32(from.X-nx), float32(from.Y-ny))
	z.ClosePath()
}

var _ render.Canvas = (*Raster)(nil)

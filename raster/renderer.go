// Package raster renders text drop shadows on the CPU.
//
// Renderer implements textshadow.FontRenderer on top of golang.org/x/image:
// glyph outlines come from font/sfnt, coverage from vector.Rasterizer, and
// the result is blurred with the shadow Gaussian. Key text codes are glyph
// indices into the key's typeface.
//
// Usage:
//
//	c := textshadow.New(textshadow.WithFontRenderer(raster.New()))
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/textshadow"
	"github.com/gogpu/textshadow/internal/blur"
)

// DefaultMaxDimension is the default limit on shadow bitmap width and
// height in pixels.
const DefaultMaxDimension = 4096

// ErrBitmapTooLarge is returned when a shadow would exceed the renderer's
// maximum bitmap dimension.
var ErrBitmapTooLarge = errors.New("raster: shadow bitmap too large")

// Renderer rasterizes and blurs text shadows.
//
// A Renderer reuses its scratch buffers between calls and is not safe for
// concurrent use. A textshadow.Cache only calls it from Get, so one
// Renderer per cache is enough.
type Renderer struct {
	maxDim int

	buf      sfnt.Buffer
	rast     vector.Rasterizer
	segments []segment
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxDimension limits the width and height of rendered bitmaps.
// Values <= 0 select DefaultMaxDimension.
func WithMaxDimension(n int) Option {
	return func(r *Renderer) {
		if n <= 0 {
			n = DefaultMaxDimension
		}
		r.maxDim = n
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{maxDim: DefaultMaxDimension}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// segment is an outline segment already placed in text space.
type segment struct {
	op  sfnt.SegmentOp
	pts [3]point
}

type point struct {
	x, y float32
}

// RenderDropShadow implements textshadow.FontRenderer. It returns
// (nil, nil) when the request has no ink, such as a run of spaces, or a
// radius that is not finite. A nil typeface renders with
// textshadow.DefaultTypeface.
func (r *Renderer) RenderDropShadow(key textshadow.KeyView) (*textshadow.Bitmap, error) {
	if !key.Valid() || key.TextSize <= 0 || !finite(key.Radius) {
		return nil, nil
	}
	tf := key.Typeface
	if tf == nil {
		tf = textshadow.DefaultTypeface()
	}
	f := tf.Font()
	if f == nil {
		return nil, nil
	}

	bounds, err := r.layout(f, key)
	if err != nil {
		return nil, err
	}
	if len(r.segments) == 0 || bounds.Empty() {
		return nil, nil
	}

	pad := blur.Extent(key.Radius)
	bold := 0
	if key.Flags.Has(textshadow.FlagFakeBold) {
		bold = boldExtent(key.TextSize)
		pad += bold
	}
	bounds = bounds.Inset(-pad)

	w, h := bounds.Dx(), bounds.Dy()
	if w > r.maxDim || h > r.maxDim {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrBitmapTooLarge, w, h, r.maxDim)
	}

	bitmap := textshadow.NewBitmap(w, h)
	bitmap.Left = float32(bounds.Min.X)
	bitmap.Top = float32(bounds.Min.Y)

	r.fill(bitmap, bounds.Min)
	if bold > 0 {
		dilate(bitmap.Pix, w, h, bitmap.Stride, bold)
	}
	blur.Alpha(bitmap.Pix, w, h, bitmap.Stride, key.Radius)
	return bitmap, nil
}

// layout loads every glyph outline of key, places it at its pen position
// with the key's scale and skew applied, and returns the pixel bounds of
// the result. The segments are kept in r.segments.
func (r *Renderer) layout(f *sfnt.Font, key textshadow.KeyView) (image.Rectangle, error) {
	r.segments = r.segments[:0]
	ppem := fixed.Int26_6(key.TextSize * 64)

	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))

	n := int(key.GlyphCount)
	var penX float32
	for i := range n {
		gid := sfnt.GlyphIndex(key.Text[i])

		originX, originY := penX, float32(0)
		if key.Positions != nil {
			originX, originY = key.Positions[2*i], key.Positions[2*i+1]
		}

		segs, err := f.LoadGlyph(&r.buf, gid, ppem, nil)
		switch {
		case errors.Is(err, sfnt.ErrNotFound), errors.Is(err, sfnt.ErrColoredGlyph):
			// No outline to cast a shadow from.
		case err != nil:
			return image.Rectangle{}, fmt.Errorf("raster: glyph %d: %w", gid, err)
		default:
			for _, s := range segs {
				out := segment{op: s.Op}
				for j := range argCount(s.Op) {
					x := float32(s.Args[j].X) / 64
					y := float32(s.Args[j].Y) / 64
					p := point{
						x: x*key.ScaleX + y*key.SkewX + originX,
						y: y + originY,
					}
					out.pts[j] = p
					minX, maxX = min(minX, p.x), max(maxX, p.x)
					minY, maxY = min(minY, p.y), max(maxY, p.y)
				}
				r.segments = append(r.segments, out)
			}
		}

		if key.Positions == nil {
			adv, err := f.GlyphAdvance(&r.buf, gid, ppem, font.HintingNone)
			if err == nil {
				penX += float32(adv) / 64 * key.ScaleX
			}
		}
	}

	if len(r.segments) == 0 {
		return image.Rectangle{}, nil
	}
	return image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	), nil
}

// fill rasterizes r.segments into bitmap, whose top-left corner sits at
// origin in text space.
func (r *Renderer) fill(bitmap *textshadow.Bitmap, origin image.Point) {
	dx, dy := float32(origin.X), float32(origin.Y)

	r.rast.Reset(bitmap.Width, bitmap.Height)
	r.rast.DrawOp = draw.Src

	started := false
	for _, s := range r.segments {
		p := s.pts
		switch s.op {
		case sfnt.SegmentOpMoveTo:
			if started {
				r.rast.ClosePath()
			}
			r.rast.MoveTo(p[0].x-dx, p[0].y-dy)
			started = true
		case sfnt.SegmentOpLineTo:
			r.rast.LineTo(p[0].x-dx, p[0].y-dy)
		case sfnt.SegmentOpQuadTo:
			r.rast.QuadTo(p[0].x-dx, p[0].y-dy, p[1].x-dx, p[1].y-dy)
		case sfnt.SegmentOpCubeTo:
			r.rast.CubeTo(p[0].x-dx, p[0].y-dy, p[1].x-dx, p[1].y-dy, p[2].x-dx, p[2].y-dy)
		}
	}
	if started {
		r.rast.ClosePath()
	}

	dst := bitmap.Image()
	r.rast.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
}

func argCount(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}

// boldExtent is the synthetic bold dilation in pixels for a text size.
func boldExtent(size float32) int {
	return max(1, int(math.Round(float64(size)/24)))
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

package raster

import (
	"errors"
	"math"
	"slices"
	"testing"

	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/textshadow"
	"github.com/gogpu/textshadow/internal/blur"
)

// glyphs maps s to glyph indices in the default typeface.
func glyphs(t testing.TB, s string) []uint16 {
	t.Helper()
	f := textshadow.DefaultTypeface().Font()
	var buf sfnt.Buffer
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		gid, err := f.GlyphIndex(&buf, r)
		if err != nil {
			t.Fatalf("GlyphIndex(%q): %v", r, err)
		}
		out = append(out, uint16(gid))
	}
	return out
}

func render(t *testing.T, r *Renderer, style textshadow.Style, radius float32, text string, positions []float32) *textshadow.Bitmap {
	t.Helper()
	gids := glyphs(t, text)
	b, err := r.RenderDropShadow(textshadow.NewKeyView(style, radius, len(gids), gids, positions))
	if err != nil {
		t.Fatalf("RenderDropShadow(%q): %v", text, err)
	}
	if b == nil {
		t.Fatalf("RenderDropShadow(%q) produced no bitmap", text)
	}
	return b
}

func coverage(b *textshadow.Bitmap) int {
	n := 0
	for y := range b.Height {
		for _, v := range b.Row(y) {
			n += int(v)
		}
	}
	return n
}

func TestRenderGlyph(t *testing.T) {
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 32)
	b := render(t, New(), style, 0, "H", nil)

	if b.Empty() {
		t.Fatal("bitmap is empty")
	}
	if b.Top >= 0 {
		t.Errorf("Top = %v, glyph should extend above the baseline", b.Top)
	}
	if b.Top+float32(b.Height) > 1 {
		t.Errorf("H should not descend below the baseline: Top=%v Height=%d", b.Top, b.Height)
	}
	if coverage(b) == 0 {
		t.Error("no coverage")
	}
	// Cap height of Go Regular at 32px is about 23px.
	if b.Height < 20 || b.Height > 26 {
		t.Errorf("Height = %d, want about 23", b.Height)
	}
}

func TestRenderBlurPadding(t *testing.T) {
	r := New()
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 24)

	sharp := render(t, r, style, 0, "A", nil)
	blurred := render(t, r, style, 4, "A", nil)

	pad := blur.Extent(4)
	if blurred.Width != sharp.Width+2*pad || blurred.Height != sharp.Height+2*pad {
		t.Errorf("blurred %dx%d, want %dx%d", blurred.Width, blurred.Height, sharp.Width+2*pad, sharp.Height+2*pad)
	}
	if blurred.Left != sharp.Left-float32(pad) || blurred.Top != sharp.Top-float32(pad) {
		t.Errorf("blurred offsets (%v, %v), want (%v, %v)",
			blurred.Left, blurred.Top, sharp.Left-float32(pad), sharp.Top-float32(pad))
	}
	if blurred.Pix[0] != 0 {
		t.Error("padding corner should be transparent")
	}

	// The blur spreads coverage but keeps most of it.
	cs, cb := coverage(sharp), coverage(blurred)
	if cb < cs*9/10 || cb > cs*11/10 {
		t.Errorf("coverage %d after blur, %d before", cb, cs)
	}
}

func TestRenderAdvancesAndPositions(t *testing.T) {
	r := New()
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 20)

	one := render(t, r, style, 0, "l", nil)
	two := render(t, r, style, 0, "ll", nil)
	if two.Width <= one.Width {
		t.Errorf("two glyphs %d wide, one glyph %d wide", two.Width, one.Width)
	}

	spread := render(t, r, style, 0, "ll", []float32{0, 0, 100, 0})
	if spread.Width < 100 {
		t.Errorf("positioned run is %d wide, want >= 100", spread.Width)
	}

	dropped := render(t, r, style, 0, "ll", []float32{0, 0, 0, 40})
	if dropped.Height < one.Height+35 {
		t.Errorf("vertical positions ignored: height %d", dropped.Height)
	}
}

func TestRenderScaleAndSkew(t *testing.T) {
	r := New()
	face := textshadow.DefaultTypeface()

	plain := render(t, r, textshadow.NewStyle(face, 30), 0, "I", nil)

	wide := textshadow.NewStyle(face, 30)
	wide.ScaleX = 3
	scaled := render(t, r, wide, 0, "I", nil)
	if scaled.Width < 2*plain.Width {
		t.Errorf("ScaleX 3: width %d, plain %d", scaled.Width, plain.Width)
	}
	if scaled.Height != plain.Height {
		t.Errorf("ScaleX changed height: %d vs %d", scaled.Height, plain.Height)
	}

	italic := textshadow.NewStyle(face, 30)
	italic.SkewX = -0.5
	skewed := render(t, r, italic, 0, "I", nil)
	if skewed.Width <= plain.Width+5 {
		t.Errorf("SkewX -0.5: width %d, plain %d", skewed.Width, plain.Width)
	}
	if skewed.Left+float32(skewed.Width) <= plain.Left+float32(plain.Width) {
		t.Error("negative skew should lean the glyph to the right")
	}
}

func TestRenderFakeBold(t *testing.T) {
	r := New()
	face := textshadow.DefaultTypeface()

	regular := render(t, r, textshadow.NewStyle(face, 48), 0, "o", nil)
	boldStyle := textshadow.NewStyle(face, 48)
	boldStyle.Bold = true
	bold := render(t, r, boldStyle, 0, "o", nil)

	d := boldExtent(48)
	if bold.Width != regular.Width+2*d || bold.Height != regular.Height+2*d {
		t.Errorf("bold %dx%d, regular %dx%d, dilation %d", bold.Width, bold.Height, regular.Width, regular.Height, d)
	}
	if coverage(bold) <= coverage(regular) {
		t.Error("synthetic bold should add coverage")
	}
}

func TestRenderNoInk(t *testing.T) {
	r := New()
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 16)
	gids := glyphs(t, "   ")

	b, err := r.RenderDropShadow(textshadow.NewKeyView(style, 3, len(gids), gids, nil))
	if b != nil || err != nil {
		t.Errorf("spaces = (%v, %v), want (nil, nil)", b, err)
	}
}

func TestRenderInvalidKey(t *testing.T) {
	r := New()
	face := textshadow.DefaultTypeface()
	gids := glyphs(t, "a")

	tests := []struct {
		name string
		key  textshadow.KeyView
	}{
		{"no glyphs", textshadow.NewKeyView(textshadow.NewStyle(face, 16), 1, 0, gids, nil)},
		{"zero size", textshadow.NewKeyView(textshadow.NewStyle(face, 0), 1, 1, gids, nil)},
		{"NaN radius", textshadow.NewKeyView(textshadow.NewStyle(face, 16), float32(math.NaN()), 1, gids, nil)},
		{"infinite radius", textshadow.NewKeyView(textshadow.NewStyle(face, 16), float32(math.Inf(1)), 1, gids, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := r.RenderDropShadow(tt.key)
			if b != nil || err != nil {
				t.Errorf("got (%v, %v), want (nil, nil)", b, err)
			}
		})
	}
}

func TestRenderNilTypefaceUsesDefault(t *testing.T) {
	r := New()
	want := render(t, r, textshadow.NewStyle(textshadow.DefaultTypeface(), 20), 2, "Ag", nil)
	got := render(t, r, textshadow.NewStyle(nil, 20), 2, "Ag", nil)

	if got.Width != want.Width || got.Height != want.Height || got.Left != want.Left || got.Top != want.Top {
		t.Errorf("nil typeface: %dx%d at (%v, %v), want %dx%d at (%v, %v)",
			got.Width, got.Height, got.Left, got.Top, want.Width, want.Height, want.Left, want.Top)
	}
	if !slices.Equal(got.Pix, want.Pix) {
		t.Error("nil typeface should rasterize like the default typeface")
	}
}

func TestRenderTooLarge(t *testing.T) {
	r := New(WithMaxDimension(16))
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 64)
	gids := glyphs(t, "W")

	_, err := r.RenderDropShadow(textshadow.NewKeyView(style, 0, 1, gids, nil))
	if !errors.Is(err, ErrBitmapTooLarge) {
		t.Errorf("err = %v, want ErrBitmapTooLarge", err)
	}

	if New(WithMaxDimension(-1)).maxDim != DefaultMaxDimension {
		t.Error("non-positive max dimension should select the default")
	}
}

func TestRenderUnknownGlyph(t *testing.T) {
	r := New()
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 16)
	n := textshadow.DefaultTypeface().NumGlyphs()
	gids := []uint16{uint16(n + 10)}

	b, err := r.RenderDropShadow(textshadow.NewKeyView(style, 1, 1, gids, nil))
	if b != nil || err != nil {
		t.Errorf("out-of-range glyph = (%v, %v), want (nil, nil)", b, err)
	}
}

func TestDilate(t *testing.T) {
	const w, h = 7, 7
	pix := make([]byte, w*h)
	pix[3*w+3] = 200

	dilate(pix, w, h, w, 1)

	for y := range h {
		for x := range w {
			want := byte(0)
			if x >= 2 && x <= 4 && y >= 2 && y <= 4 {
				want = 200
			}
			if got := pix[y*w+x]; got != want {
				t.Errorf("(%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestRendererWithCache(t *testing.T) {
	alloc := &countingAllocator{}
	c := textshadow.New(
		textshadow.WithFontRenderer(New()),
		textshadow.WithAllocator(alloc),
	)
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 18)
	gids := glyphs(t, "Shadow")

	tex, err := c.Get(style, gids, len(gids), 3, nil)
	if err != nil || tex == nil {
		t.Fatalf("Get = (%v, %v)", tex, err)
	}
	if tex.Size != tex.Width*tex.Height || c.Size() != tex.Size {
		t.Errorf("texture %dx%d, Size %d, cache Size %d", tex.Width, tex.Height, tex.Size, c.Size())
	}
	if tex.Left > 0 || tex.Top > 0 {
		t.Errorf("offsets (%v, %v) should place the shadow around the origin", tex.Left, tex.Top)
	}

	again, _ := c.Get(style, gids, len(gids), 3, nil)
	if again != tex || alloc.n != 1 {
		t.Error("second Get should hit")
	}
}

type countingAllocator struct {
	n int
}

func (a *countingAllocator) Allocate(*textshadow.Bitmap) (textshadow.Texture, error) {
	a.n++
	return textshadow.Texture{ID: textshadow.TextureID(a.n)}, nil
}

func (a *countingAllocator) Release(textshadow.TextureID) {}

func BenchmarkRenderDropShadow(b *testing.B) {
	r := New()
	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 16)
	gids := glyphs(b, "The quick brown fox")
	key := textshadow.NewKeyView(style, 4, len(gids), gids, nil)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := r.RenderDropShadow(key); err != nil {
			b.Fatal(err)
		}
	}
}

// Package shape turns strings into the glyph runs a shadow request is made
// of.
//
// Shaper runs go-text/typesetting's HarfBuzz port over each bidi run of the
// input, so kerning, ligatures and right-to-left scripts come out as they
// would when the text itself is drawn. The result feeds Cache.Get directly:
//
//	run, err := shape.New().Shape(face, 16, "Hello")
//	tex, err := cache.Get(style, run.Glyphs, len(run.Glyphs), 4, run.Positions)
package shape

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/textshadow"
)

// ErrNilTypeface is returned when shaping without a typeface.
var ErrNilTypeface = errors.New("shape: nil typeface")

// Run is a shaped line of text.
type Run struct {
	// Glyphs holds glyph indices into the typeface, in visual order.
	Glyphs []uint16

	// Positions holds one (x, y) pen position per glyph, in pixels from
	// the run origin. y grows downward.
	Positions []float32

	// Advance is the total horizontal advance of the run.
	Advance float32
}

// Shaper shapes text with go-text/typesetting.
//
// Shaper is safe for concurrent use. Parsed fonts are cached per
// Typeface; HarfBuzz shapers are pooled since they are not.
type Shaper struct {
	shaperPool sync.Pool

	mu    sync.RWMutex
	fonts map[*textshadow.Typeface]*font.Font
}

// New creates a Shaper.
func New() *Shaper {
	return &Shaper{
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fonts: make(map[*textshadow.Typeface]*font.Font),
	}
}

// Shape lays out s at size pixels with tf. Mixed-direction text is split
// into bidi runs which are shaped separately and placed in visual order.
func (s *Shaper) Shape(tf *textshadow.Typeface, size float32, text string) (Run, error) {
	if tf == nil {
		return Run{}, ErrNilTypeface
	}
	if text == "" {
		return Run{}, nil
	}

	f, err := s.font(tf)
	if err != nil {
		return Run{}, err
	}
	face := font.NewFace(f)
	runes := []rune(text)

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer s.shaperPool.Put(hb)

	var run Run
	var pen fixed.Int26_6
	for _, br := range bidiRuns(text, len(runes)) {
		out := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  br.start,
			RunEnd:    br.end,
			Direction: br.dir,
			Face:      face,
			Size:      fixed.Int26_6(size * 64),
			Script:    detectScript(runes[br.start:br.end]),
			Language:  language.NewLanguage("en"),
		})
		for _, g := range out.Glyphs {
			run.Glyphs = append(run.Glyphs, uint16(g.GlyphID)) //nolint:gosec // glyph indices of TrueType/OpenType fonts fit in 16 bits
			run.Positions = append(run.Positions,
				fixedToFloat(pen+g.XOffset),
				-fixedToFloat(g.YOffset),
			)
			pen += g.Advance
		}
	}
	run.Advance = fixedToFloat(pen)
	return run, nil
}

// font returns the cached go-text font for tf, parsing it on first use.
func (s *Shaper) font(tf *textshadow.Typeface) (*font.Font, error) {
	s.mu.RLock()
	f, ok := s.fonts[tf]
	s.mu.RUnlock()
	if ok {
		return f, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fonts[tf]; ok {
		return f, nil
	}

	face, err := font.ParseTTF(bytes.NewReader(tf.Data()))
	if err != nil {
		return nil, fmt.Errorf("shape: parse %q: %w", tf.Name(), err)
	}
	s.fonts[tf] = face.Font
	return face.Font, nil
}

// Forget drops the parsed font cached for tf.
func (s *Shaper) Forget(tf *textshadow.Typeface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fonts, tf)
}

// bidiRun is a directional run as rune offsets [start, end).
type bidiRun struct {
	start, end int
	dir        di.Direction
}

// bidiRuns splits text into directional runs in visual order. Text the
// bidi algorithm cannot order is treated as one left-to-right run.
func bidiRuns(text string, n int) []bidiRun {
	whole := []bidiRun{{start: 0, end: n, dir: di.DirectionLTR}}

	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return whole
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return whole
	}

	runs := make([]bidiRun, 0, ordering.NumRuns())
	for i := range ordering.NumRuns() {
		r := ordering.Run(i)
		start, end := r.Pos() // rune indices, end inclusive
		start, end = max(start, 0), min(end+1, n)
		if start >= end {
			continue
		}
		dir := di.DirectionLTR
		if r.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		runs = append(runs, bidiRun{start: start, end: end, dir: dir})
	}
	if len(runs) == 0 {
		return whole
	}
	return runs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

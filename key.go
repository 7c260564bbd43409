package textshadow

import (
	"cmp"
	"math"
	"slices"
)

// KeyView identifies a shadow request without owning its buffers.
//
// Text and Positions alias the caller's memory, so a KeyView is only valid
// while those buffers are unchanged. It is the form used for lookups; call
// Finalize to obtain a Key that can outlive the caller's buffers.
//
// Fields are listed in comparison order.
type KeyView struct {
	GlyphCount uint32
	Radius     float32
	TextSize   float32
	Typeface   *Typeface
	Flags      Flags
	SkewX      float32
	ScaleX     float32

	// Text holds GlyphCount fixed-width character codes.
	Text []uint16

	// Positions holds GlyphCount (x, y) pairs, or is nil when the glyphs
	// are laid out by their advances.
	Positions []float32
}

// NewKeyView builds a borrowed key from a paint and raw buffers.
// Nothing is copied. A negative glyphCount is treated as zero.
func NewKeyView(p Paint, radius float32, glyphCount int, text []uint16, positions []float32) KeyView {
	v := KeyView{
		GlyphCount: clampCount(glyphCount),
		Radius:     radius,
		Text:       text,
		Positions:  positions,
	}
	if p != nil {
		v.TextSize = p.TextSize()
		v.Typeface = p.Typeface()
		v.Flags = flagsOf(p)
		v.SkewX = p.TextSkewX()
		v.ScaleX = p.TextScaleX()
	}
	return v
}

func clampCount(n int) uint32 {
	switch {
	case n <= 0:
		return 0
	case uint64(n) > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(n)
	}
}

// Valid reports whether the view describes something that can be
// rasterized: at least one glyph, enough text codes and, when positions are
// present, enough of them. A nil Typeface is valid and stands for the
// renderer's default face.
func (v KeyView) Valid() bool {
	n := int(v.GlyphCount)
	if n == 0 || len(v.Text) < n {
		return false
	}
	if v.Positions != nil && len(v.Positions) < 2*n {
		return false
	}
	return true
}

// codes returns the GlyphCount-long prefix of Text (shorter if Text is).
func (v KeyView) codes() []uint16 {
	return v.Text[:min(int(v.GlyphCount), len(v.Text))]
}

// positions returns the GlyphCount*2-long prefix of Positions, keeping the
// distinction between absent (nil) and present.
func (v KeyView) positions() []float32 {
	if v.Positions == nil {
		return nil
	}
	return v.Positions[:min(2*int(v.GlyphCount), len(v.Positions))]
}

// Finalize copies the text and position buffers into fresh storage and
// returns the owned key. The result never aliases the caller's buffers.
func (v KeyView) Finalize() Key {
	owned := v

	codes := v.codes()
	owned.Text = make([]uint16, len(codes))
	copy(owned.Text, codes)

	if pos := v.positions(); pos != nil {
		owned.Positions = make([]float32, len(pos))
		copy(owned.Positions, pos)
	}
	return Key{view: owned}
}

// Hash returns a hash consistent with Compare: views that compare equal
// hash identically.
func (v KeyView) Hash() uint64 {
	h := newHasher()
	h.add32(v.GlyphCount)
	h.add32(floatBits(v.Radius))
	h.add32(floatBits(v.TextSize))
	h.add64(v.Typeface.ID())
	h.add32(uint32(v.Flags))
	h.add32(floatBits(v.SkewX))
	h.add32(floatBits(v.ScaleX))
	for _, c := range v.codes() {
		h.add16(c)
	}
	if pos := v.positions(); pos != nil {
		h.addByte(1)
		for _, p := range pos {
			h.add32(floatBits(p))
		}
	} else {
		h.addByte(0)
	}
	return uint64(h)
}

// Compare orders two views. It returns -1, 0 or +1.
//
// Scalar fields are compared first, in declaration order, then the text
// codes and finally the positions, where an absent array sorts before a
// present one. Floats use cmp.Compare ordering, so the order is total.
func Compare(a, b KeyView) int {
	if c := cmp.Compare(a.GlyphCount, b.GlyphCount); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Radius, b.Radius); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TextSize, b.TextSize); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Typeface.ID(), b.Typeface.ID()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Flags, b.Flags); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SkewX, b.SkewX); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ScaleX, b.ScaleX); c != 0 {
		return c
	}
	if c := slices.Compare(a.codes(), b.codes()); c != 0 {
		return c
	}

	ap, bp := a.positions(), b.positions()
	switch {
	case ap == nil && bp == nil:
		return 0
	case ap == nil:
		return -1
	case bp == nil:
		return 1
	}
	return slices.CompareFunc(ap, bp, cmp.Compare[float32])
}

// Equal reports whether two views identify the same shadow.
func Equal(a, b KeyView) bool {
	return Compare(a, b) == 0
}

// Key is the owned form of a shadow key, stored by the cache.
// Its buffers are private copies made by KeyView.Finalize.
type Key struct {
	view KeyView
}

// View returns the key's fields. The returned slices belong to the key
// and must not be modified.
func (k Key) View() KeyView {
	return k.view
}

// Hash returns the hash of the key's view.
func (k Key) Hash() uint64 {
	return k.view.Hash()
}

// Equal reports whether k and other identify the same shadow.
func (k Key) Equal(other Key) bool {
	return Compare(k.view, other.view) == 0
}

// Matches reports whether k identifies the same shadow as v.
func (k Key) Matches(v KeyView) bool {
	return Compare(k.view, v) == 0
}

// canonicalNaN is the bit pattern every NaN hashes as.
const canonicalNaN = 0x7fc00000

// floatBits returns the bits of f with -0 folded into +0 and every NaN
// folded into one pattern, matching cmp.Compare equality.
func floatBits(f float32) uint32 {
	switch {
	case f == 0:
		return 0
	case math.IsNaN(float64(f)):
		return canonicalNaN
	default:
		return math.Float32bits(f)
	}
}

// FNV-1a, inlined so that hashing a lookup key does not allocate.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

type hasher uint64

func newHasher() hasher { return fnvOffset64 }

func (h *hasher) addByte(b byte) {
	*h ^= hasher(b)
	*h *= fnvPrime64
}

func (h *hasher) add16(v uint16) {
	h.addByte(byte(v))
	h.addByte(byte(v >> 8))
}

func (h *hasher) add32(v uint32) {
	h.addByte(byte(v))
	h.addByte(byte(v >> 8))
	h.addByte(byte(v >> 16))
	h.addByte(byte(v >> 24))
}

func (h *hasher) add64(v uint64) {
	h.add32(uint32(v))
	h.add32(uint32(v >> 32))
}

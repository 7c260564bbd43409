package textshadow

// Paint is the style descriptor a shadow request is built from.
// Implementations must be pure accessors; the cache reads them once per
// Get and keeps no reference.
type Paint interface {
	// TextSize returns the font size in pixels.
	TextSize() float32

	// Typeface returns the typeface handle. Compared by identity.
	Typeface() *Typeface

	// FakeBold reports whether synthetic emboldening is requested.
	FakeBold() bool

	// TextSkewX returns the horizontal skew applied to glyphs (negative
	// values lean right, as for a synthetic italic).
	TextSkewX() float32

	// TextScaleX returns the horizontal scale applied to glyphs.
	TextScaleX() float32
}

// Flags is a bitset of style flags that participate in the shadow key.
type Flags uint32

// Style flags.
const (
	// FlagFakeBold marks synthetic bold.
	FlagFakeBold Flags = 1 << 0
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Style is a plain Paint implementation.
//
//	style := textshadow.Style{Face: tf, Size: 16, ScaleX: 1}
type Style struct {
	Face   *Typeface
	Size   float32
	Bold   bool
	SkewX  float32
	ScaleX float32
}

// NewStyle returns a Style with unit horizontal scale.
func NewStyle(face *Typeface, size float32) Style {
	return Style{Face: face, Size: size, ScaleX: 1}
}

// TextSize implements Paint.
func (s Style) TextSize() float32 { return s.Size }

// Typeface implements Paint.
func (s Style) Typeface() *Typeface { return s.Face }

// FakeBold implements Paint.
func (s Style) FakeBold() bool { return s.Bold }

// TextSkewX implements Paint.
func (s Style) TextSkewX() float32 { return s.SkewX }

// TextScaleX implements Paint.
func (s Style) TextScaleX() float32 { return s.ScaleX }

// flagsOf extracts the key flags from a paint.
func flagsOf(p Paint) Flags {
	var f Flags
	if p.FakeBold() {
		f |= FlagFakeBold
	}
	return f
}

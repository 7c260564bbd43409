package textshadow

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// typefaceSeq hands out identities. Zero is reserved for the nil typeface.
var typefaceSeq atomic.Uint64

// Typeface is an opaque handle to a parsed OpenType/TrueType font.
//
// Shadow keys compare typefaces by identity: two Typefaces created from the
// same bytes are different keys, since renderer state may differ per
// instance. Typeface is immutable and safe for concurrent use.
type Typeface struct {
	id   uint64
	name string
	data []byte
	font *sfnt.Font
}

// NewTypeface parses font data (TTF or OTF). The data is copied.
func NewTypeface(data []byte) (*Typeface, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	f, err := opentype.Parse(dataCopy)
	if err != nil {
		return nil, fmt.Errorf("textshadow: failed to parse font: %w", err)
	}

	tf := &Typeface{
		id:   typefaceSeq.Add(1),
		data: dataCopy,
		font: f,
	}
	if name, err := f.Name(nil, sfnt.NameIDFamily); err == nil {
		tf.name = name
	}
	return tf, nil
}

// NewTypefaceFromFile loads a typeface from a font file path.
func NewTypefaceFromFile(path string) (*Typeface, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-provided path
	if err != nil {
		return nil, fmt.Errorf("textshadow: failed to read font file: %w", err)
	}
	return NewTypeface(data)
}

var (
	defaultTypefaceOnce sync.Once
	defaultTypeface     *Typeface
)

// DefaultTypeface returns the Go Regular typeface, parsed on first use.
// Every call returns the same instance.
func DefaultTypeface() *Typeface {
	defaultTypefaceOnce.Do(func() {
		tf, err := NewTypeface(goregular.TTF)
		if err != nil {
			panic(err) // embedded font, cannot fail
		}
		defaultTypeface = tf
	})
	return defaultTypeface
}

// ID returns the identity used for key ordering. Zero for a nil typeface.
func (t *Typeface) ID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Name returns the font family name, or "" if the font has none.
func (t *Typeface) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Font returns the parsed font.
func (t *Typeface) Font() *sfnt.Font {
	if t == nil {
		return nil
	}
	return t.font
}

// Data returns the raw font bytes. Callers must not modify them.
func (t *Typeface) Data() []byte {
	if t == nil {
		return nil
	}
	return t.data
}

// NumGlyphs returns the number of glyphs in the font.
func (t *Typeface) NumGlyphs() int {
	if t == nil {
		return 0
	}
	return t.font.NumGlyphs()
}

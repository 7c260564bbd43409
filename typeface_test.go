package textshadow

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func TestNewTypeface(t *testing.T) {
	tf, err := NewTypeface(gobold.TTF)
	if err != nil {
		t.Fatalf("NewTypeface: %v", err)
	}
	if tf.Name() == "" {
		t.Error("Name() is empty")
	}
	if tf.NumGlyphs() == 0 {
		t.Error("NumGlyphs() = 0")
	}
	if tf.ID() == 0 {
		t.Error("ID() = 0 for a live typeface")
	}
	if &tf.Data()[0] == &gobold.TTF[0] {
		t.Error("NewTypeface should copy the font data")
	}
}

func TestNewTypefaceErrors(t *testing.T) {
	if _, err := NewTypeface(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("NewTypeface(nil) err = %v, want ErrEmptyFontData", err)
	}
	if _, err := NewTypeface([]byte("not a font")); err == nil {
		t.Error("NewTypeface(garbage) should fail")
	}
	if _, err := NewTypefaceFromFile(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("NewTypefaceFromFile(missing) should fail")
	}
}

func TestNewTypefaceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gobold.ttf")
	if err := os.WriteFile(path, gobold.TTF, 0o600); err != nil {
		t.Fatal(err)
	}
	tf, err := NewTypefaceFromFile(path)
	if err != nil {
		t.Fatalf("NewTypefaceFromFile: %v", err)
	}
	if tf.Font() == nil {
		t.Error("Font() = nil")
	}
}

func TestTypefaceIdentity(t *testing.T) {
	a, err := NewTypeface(gobold.TTF)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTypeface(gobold.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() == b.ID() {
		t.Error("separately created typefaces should have distinct identities")
	}
	if DefaultTypeface() != DefaultTypeface() {
		t.Error("DefaultTypeface should return one instance")
	}
}

func TestNilTypeface(t *testing.T) {
	var tf *Typeface
	if tf.ID() != 0 || tf.Name() != "" || tf.Font() != nil || tf.Data() != nil || tf.NumGlyphs() != 0 {
		t.Error("nil typeface accessors should return zero values")
	}
}

func TestStyleFlags(t *testing.T) {
	s := NewStyle(nil, 10)
	if s.TextScaleX() != 1 {
		t.Errorf("NewStyle ScaleX = %v, want 1", s.TextScaleX())
	}
	if flagsOf(s) != 0 {
		t.Error("plain style has flags")
	}
	s.Bold = true
	if f := flagsOf(s); !f.Has(FlagFakeBold) {
		t.Errorf("flags = %v, want FlagFakeBold", f)
	}
}

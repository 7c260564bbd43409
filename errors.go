package textshadow

import "errors"

// Sentinel errors for the textshadow package.
var (
	// ErrNoRenderer is returned by Cache.Get on a miss when no FontRenderer
	// has been installed.
	ErrNoRenderer = errors.New("textshadow: no font renderer")

	// ErrNoAllocator is returned by Cache.Get on a miss when no Allocator
	// has been installed.
	ErrNoAllocator = errors.New("textshadow: no texture allocator")

	// ErrTextureAllocation wraps failures reported by the Allocator.
	// The cache is left unchanged when it is returned.
	ErrTextureAllocation = errors.New("textshadow: texture allocation failed")

	// ErrEmptyFontData is returned when a typeface is created from no bytes.
	ErrEmptyFontData = errors.New("textshadow: empty font data")
)

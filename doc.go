// Package textshadow caches rasterized text drop shadows as GPU textures.
//
// # Overview
//
// Drawing a blurred shadow under text means rasterizing the glyphs,
// blurring the coverage and uploading the result to the GPU. Interactive
// renderers draw the same shadows frame after frame, so textshadow keeps
// the uploaded alpha textures in a Cache keyed by everything that affects
// the pixels: glyph codes, optional per-glyph positions, blur radius, text
// size, typeface identity, synthetic bold, skew and horizontal scale.
//
// # Quick Start
//
//	alloc, err := gpu.NewHALAllocator(device, queue)
//	if err != nil {
//	    return err
//	}
//	c := textshadow.New(
//	    textshadow.WithFontRenderer(raster.New()),
//	    textshadow.WithAllocator(alloc),
//	)
//
//	style := textshadow.NewStyle(textshadow.DefaultTypeface(), 16)
//	run, _ := shape.New().Shape(style.Face, style.Size, "Hello")
//	tex, err := c.Get(style, run.Glyphs, len(run.Glyphs), 4, run.Positions)
//	if err != nil {
//	    return err
//	}
//	if tex != nil {
//	    // draw tex at (x+tex.Left, y+tex.Top)
//	}
//
// # Keys
//
// Lookups build a KeyView that borrows the caller's buffers; nothing is
// copied on a hit. When a miss is inserted the view is finalized into a Key
// that owns copies of the text and positions. Both forms compare through
// the same Compare function and hash with KeyView.Hash.
//
// # Memory budget
//
// The cache is bounded by the bytes of its textures, not by the number of
// entries. Inserting evicts least recently used entries until the new
// texture fits; a texture larger than the whole budget is cached alone.
// SetMaxSize below the current size evicts immediately.
//
// # Collaborators
//
// The cache depends only on the FontRenderer and Allocator interfaces.
// Package raster provides a FontRenderer built on golang.org/x/image,
// package gpu an Allocator over gogpu/wgpu HAL devices, and package shape
// turns strings into glyph runs with go-text/typesetting.
//
// # Thread Safety
//
// Cache is meant for a single rendering goroutine and does no locking.
// Synchronized wraps a Cache behind one mutex.
package textshadow

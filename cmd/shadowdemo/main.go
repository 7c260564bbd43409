// Command shadowdemo renders text drop shadows through the shadow cache.
//
// It shapes every word of -text, requests its shadow once per frame and
// reports the cache statistics. Textures are created on a noop HAL device,
// so the demo runs without a GPU. With -out, the last rendered shadow is
// also written as a grayscale PNG.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/textshadow"
	"github.com/gogpu/textshadow/gpu"
	"github.com/gogpu/textshadow/raster"
	"github.com/gogpu/textshadow/shape"
)

func main() {
	var (
		text     = flag.String("text", "The quick brown fox jumps over the lazy dog", "text to shadow, one entry per word")
		fontPath = flag.String("font", "", "TTF/OTF file (default: Go Regular)")
		size     = flag.Float64("size", 24, "text size in pixels")
		radius   = flag.Float64("radius", 4, "shadow blur radius")
		bold     = flag.Bool("bold", false, "synthetic bold")
		skew     = flag.Float64("skew", 0, "horizontal skew (negative leans right)")
		scale    = flag.Float64("scale", 1, "horizontal scale")
		maxSize  = flag.Int("max", textshadow.DefaultMaxSize, "cache budget in bytes")
		frames   = flag.Int("frames", 3, "number of frames to draw")
		output   = flag.String("out", "", "write the last rendered shadow to this PNG file")
		verbose  = flag.Bool("v", false, "log cache activity")
	)
	flag.Parse()

	if *verbose {
		textshadow.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	face := textshadow.DefaultTypeface()
	if *fontPath != "" {
		var err error
		face, err = textshadow.NewTypefaceFromFile(*fontPath)
		if err != nil {
			log.Fatalf("Failed to load font: %v", err)
		}
	}

	// Noop HAL device: every call succeeds without touching a GPU.
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		log.Fatalf("Failed to create instance: %v", err)
	}
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		log.Fatal("No adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer openDev.Device.Destroy()

	alloc, err := gpu.NewHALAllocator(openDev.Device, openDev.Queue)
	if err != nil {
		log.Fatalf("Failed to create allocator: %v", err)
	}
	defer alloc.Close()

	renderer := raster.New()
	var last *textshadow.Bitmap
	capture := textshadow.FontRendererFunc(func(key textshadow.KeyView) (*textshadow.Bitmap, error) {
		b, err := renderer.RenderDropShadow(key)
		if b != nil {
			last = b
		}
		return b, err
	})

	cache := textshadow.New(
		textshadow.WithMaxSize(*maxSize),
		textshadow.WithFontRenderer(capture),
		textshadow.WithAllocator(alloc),
	)
	defer cache.Clear()

	style := textshadow.Style{
		Face:   face,
		Size:   float32(*size),
		Bold:   *bold,
		SkewX:  float32(*skew),
		ScaleX: float32(*scale),
	}

	shaper := shape.New()
	words := strings.Fields(*text)
	runs := make([]shape.Run, len(words))
	for i, w := range words {
		runs[i], err = shaper.Shape(face, style.Size, w)
		if err != nil {
			log.Fatalf("Failed to shape %q: %v", w, err)
		}
	}

	for frame := range *frames {
		for i, run := range runs {
			tex, err := cache.Get(style, run.Glyphs, len(run.Glyphs), float32(*radius), run.Positions)
			if err != nil {
				log.Fatalf("Frame %d, %q: %v", frame, words[i], err)
			}
			if tex == nil {
				continue
			}
			if frame == 0 {
				log.Printf("%-12q %3dx%-3d at (%.0f, %.0f)", words[i], tex.Width, tex.Height, tex.Left, tex.Top)
			}
		}
	}

	st := cache.Stats()
	log.Printf("%d entries, %d/%d bytes, hits %d, misses %d (%.0f%%), evictions %d, live textures %d",
		st.Len, st.Size, st.MaxSize, st.Hits, st.Misses, st.HitRate*100, st.Evictions, alloc.Live())

	if *output != "" && last != nil {
		if err := savePNG(*output, last); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Shadow saved to %s (%dx%d)", *output, last.Width, last.Height)
	}
}

func savePNG(path string, b *textshadow.Bitmap) error {
	f, err := os.Create(path) //nolint:gosec // user-provided output path
	if err != nil {
		return err
	}
	if err := png.Encode(f, b.Image()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

package textshadow

// DefaultMaxSize is the default cache budget in bytes (2 MiB).
const DefaultMaxSize = 2 << 20

// Option configures a Cache during creation.
//
// Example:
//
//	c := textshadow.New(
//	    textshadow.WithMaxSize(4<<20),
//	    textshadow.WithFontRenderer(raster.New()),
//	    textshadow.WithAllocator(alloc),
//	)
type Option func(*config)

// config holds optional configuration for Cache creation.
type config struct {
	maxSize   int
	renderer  FontRenderer
	allocator Allocator
}

// defaultConfig returns the default cache configuration.
func defaultConfig() config {
	return config{
		maxSize: DefaultMaxSize,
	}
}

// WithMaxSize sets the cache budget in bytes. Negative values are treated
// as zero, which caches at most one shadow at a time.
func WithMaxSize(n int) Option {
	return func(c *config) {
		c.maxSize = max(n, 0)
	}
}

// WithFontRenderer installs the rasterizer used on cache misses.
func WithFontRenderer(r FontRenderer) Option {
	return func(c *config) {
		c.renderer = r
	}
}

// WithAllocator installs the GPU texture allocator.
func WithAllocator(a Allocator) Option {
	return func(c *config) {
		c.allocator = a
	}
}

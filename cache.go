package textshadow

import (
	"fmt"
	"slices"

	"github.com/gogpu/textshadow/internal/lru"
)

// Cache maps shadow requests to rasterized shadow textures.
//
// Entries are evicted least recently used first so that the bytes held by
// cached textures stay within MaxSize. A single shadow larger than the
// whole budget is still cached, after everything else has been evicted.
//
// Cache owns the textures it returns: a texture stays valid until its entry
// is evicted, removed or cleared, at which point its GPU resource is
// released. Cache is not safe for concurrent use; see Synchronized.
type Cache struct {
	buckets map[uint64][]*entry
	recency *lru.List[*entry]

	size    int
	maxSize int

	renderer  FontRenderer
	allocator Allocator

	stats counters
}

// entry is one present cache entry. Its key and texture live and die
// together.
type entry struct {
	key     Key
	hash    uint64
	texture *ShadowTexture
	node    *lru.Node[*entry]
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache{
		buckets:   make(map[uint64][]*entry),
		recency:   lru.New[*entry](),
		maxSize:   cfg.maxSize,
		renderer:  cfg.renderer,
		allocator: cfg.allocator,
	}
}

// Get returns the shadow texture for a run of glyphs drawn with paint p and
// blurred with the given radius. positions holds glyphCount (x, y) pairs
// or is nil.
//
// On a hit the entry becomes the most recently used and nothing else
// changes. On a miss the shadow is rasterized, uploaded and inserted,
// evicting older entries as needed.
//
// Get returns (nil, nil) when there is no shadow to draw: no paint,
// degenerate input or a rasterizer that produced nothing. It returns an error when a
// collaborator is missing or the GPU texture could not be allocated; the
// cache is unchanged in both cases.
func (c *Cache) Get(p Paint, text []uint16, glyphCount int, radius float32, positions []float32) (*ShadowTexture, error) {
	if p == nil {
		return nil, nil
	}
	view := NewKeyView(p, radius, glyphCount, text, positions)
	if !view.Valid() {
		return nil, nil
	}

	hash := view.Hash()
	if e := c.find(hash, view); e != nil {
		c.recency.MoveToFront(e.node)
		c.stats.hits++
		return e.texture, nil
	}
	c.stats.misses++

	if c.renderer == nil {
		return nil, ErrNoRenderer
	}
	if c.allocator == nil {
		return nil, ErrNoAllocator
	}

	bitmap, err := c.renderer.RenderDropShadow(view)
	if err != nil || bitmap.Empty() {
		c.stats.renderFailures++
		Logger().Debug("no shadow rendered",
			"glyphs", view.GlyphCount, "radius", view.Radius, "err", err)
		return nil, nil
	}

	tex, err := c.allocator.Allocate(bitmap)
	if err != nil {
		c.stats.allocFailures++
		Logger().Warn("shadow texture allocation failed",
			"width", bitmap.Width, "height", bitmap.Height, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrTextureAllocation, err)
	}

	texture := newShadowTexture(tex, bitmap, c.allocator)
	c.makeRoom(texture.Size)
	c.insert(hash, view.Finalize(), texture)

	Logger().Debug("shadow texture created",
		"width", texture.Width, "height", texture.Height,
		"bytes", texture.Size, "cache_bytes", c.size)
	return texture, nil
}

// Lookup returns the cached texture for view without rasterizing.
// A hit makes the entry the most recently used.
func (c *Cache) Lookup(view KeyView) (*ShadowTexture, bool) {
	e := c.find(view.Hash(), view)
	if e == nil {
		return nil, false
	}
	c.recency.MoveToFront(e.node)
	return e.texture, true
}

// Remove evicts the entry for view, releasing its texture. It reports
// whether an entry was present.
func (c *Cache) Remove(view KeyView) bool {
	e := c.find(view.Hash(), view)
	if e == nil {
		return false
	}
	c.remove(e)
	return true
}

// Clear evicts every entry. All cached textures are released.
func (c *Cache) Clear() {
	c.recency.Each(func(e *entry) bool {
		c.entryRemoved(e)
		return true
	})
	c.recency.Clear()
	clear(c.buckets)
}

// SetFontRenderer installs the rasterizer used on misses.
func (c *Cache) SetFontRenderer(r FontRenderer) {
	c.renderer = r
}

// SetAllocator installs the texture allocator used on misses. Textures
// already cached are released through the allocator that created them.
func (c *Cache) SetAllocator(a Allocator) {
	c.allocator = a
}

// SetMaxSize sets the cache budget in bytes. When the cache holds more
// than the new budget, least recently used entries are evicted right away.
func (c *Cache) SetMaxSize(n int) {
	c.maxSize = max(n, 0)
	for c.size > c.maxSize && c.recency.Len() > 0 {
		c.evictOldest()
	}
}

// MaxSize returns the cache budget in bytes.
func (c *Cache) MaxSize() int {
	return c.maxSize
}

// Size returns the number of bytes held by cached textures.
func (c *Cache) Size() int {
	return c.size
}

// Len returns the number of cached shadows.
func (c *Cache) Len() int {
	return c.recency.Len()
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache) Stats() Stats {
	return Stats{
		Len:            c.recency.Len(),
		Size:           c.size,
		MaxSize:        c.maxSize,
		Hits:           c.stats.hits,
		Misses:         c.stats.misses,
		HitRate:        c.stats.hitRate(),
		Evictions:      c.stats.evictions,
		RenderFailures: c.stats.renderFailures,
		AllocFailures:  c.stats.allocFailures,
	}
}

// ResetStats zeroes the hit, miss, eviction and failure counters.
func (c *Cache) ResetStats() {
	c.stats = counters{}
}

func (c *Cache) find(hash uint64, view KeyView) *entry {
	for _, e := range c.buckets[hash] {
		if e.key.Matches(view) {
			return e
		}
	}
	return nil
}

// makeRoom evicts least recently used entries until n more bytes fit in
// the budget or the cache is empty.
func (c *Cache) makeRoom(n int) {
	for c.size+n > c.maxSize && c.recency.Len() > 0 {
		c.evictOldest()
	}
}

func (c *Cache) insert(hash uint64, key Key, texture *ShadowTexture) {
	if old := c.find(hash, key.View()); old != nil {
		c.remove(old)
	}

	e := &entry{key: key, hash: hash, texture: texture}
	e.node = c.recency.PushFront(e)
	c.buckets[hash] = append(c.buckets[hash], e)
	c.size += texture.Size
}

func (c *Cache) evictOldest() {
	oldest := c.recency.Back()
	if oldest == nil {
		return
	}
	c.stats.evictions++
	c.remove(oldest.Value)
}

// remove detaches e from the index and the recency list, then runs the
// eviction hook. Every removal path ends here.
func (c *Cache) remove(e *entry) {
	if !c.recency.Remove(e.node) {
		return
	}

	bucket := c.buckets[e.hash]
	if i := slices.Index(bucket, e); i >= 0 {
		bucket = slices.Delete(bucket, i, i+1)
	}
	if len(bucket) == 0 {
		delete(c.buckets, e.hash)
	} else {
		c.buckets[e.hash] = bucket
	}

	c.entryRemoved(e)
}

// entryRemoved is the eviction hook: it settles the size accounting and
// frees the GPU resource of a removed entry. Only remove and Clear call it.
func (c *Cache) entryRemoved(e *entry) {
	c.size -= e.texture.Size
	Logger().Debug("shadow texture evicted",
		"bytes", e.texture.Size, "cache_bytes", c.size)
	e.texture.release()
}

package textshadow

// Stats contains cache statistics for monitoring.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Size is the number of bytes held by cached textures.
	Size int
	// MaxSize is the cache budget in bytes.
	MaxSize int
	// Hits is the number of Get calls served from the cache.
	Hits uint64
	// Misses is the number of Get calls that had to rasterize.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when there were no lookups.
	HitRate float64
	// Evictions is the number of entries removed to make room or to honor
	// a smaller budget. Explicit Remove and Clear are not counted.
	Evictions uint64
	// RenderFailures counts misses the rasterizer produced nothing for.
	RenderFailures uint64
	// AllocFailures counts misses whose texture allocation failed.
	AllocFailures uint64
}

// counters are the raw statistics kept by a Cache.
type counters struct {
	hits           uint64
	misses         uint64
	evictions      uint64
	renderFailures uint64
	allocFailures  uint64
}

func (c counters) hitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

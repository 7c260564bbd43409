package textshadow

import "sync"

// Synchronized guards a Cache with a single mutex for hosts that render
// from more than one goroutine. Each call holds the lock for its whole
// duration, including rasterization and upload on a miss.
//
// Textures returned by Get stay valid only until another call evicts them;
// callers sharing a Synchronized cache must finish using a texture before
// any other goroutine can trigger an eviction.
type Synchronized struct {
	mu    sync.Mutex
	cache *Cache
}

// NewSynchronized creates a Synchronized cache configured with opts.
func NewSynchronized(opts ...Option) *Synchronized {
	return &Synchronized{cache: New(opts...)}
}

// Get is Cache.Get under the lock.
func (s *Synchronized) Get(p Paint, text []uint16, glyphCount int, radius float32, positions []float32) (*ShadowTexture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(p, text, glyphCount, radius, positions)
}

// Do runs fn with exclusive access to the underlying cache.
func (s *Synchronized) Do(fn func(c *Cache)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cache)
}

// Clear is Cache.Clear under the lock.
func (s *Synchronized) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
}

// SetMaxSize is Cache.SetMaxSize under the lock.
func (s *Synchronized) SetMaxSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.SetMaxSize(n)
}

// Size is Cache.Size under the lock.
func (s *Synchronized) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Size()
}

// Stats is Cache.Stats under the lock.
func (s *Synchronized) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Stats()
}

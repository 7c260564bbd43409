package textshadow

import (
	"errors"
	"testing"
)

// fakeRenderer produces bitmaps whose byte size is looked up by the text
// being rendered. Unknown texts render one byte.
type fakeRenderer struct {
	sizes map[string]int
	calls int
	empty bool
	err   error
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{sizes: make(map[string]int)}
}

func (r *fakeRenderer) RenderDropShadow(key KeyView) (*Bitmap, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.empty {
		return nil, nil
	}
	n, ok := r.sizes[codesString(key.Text[:key.GlyphCount])]
	if !ok {
		n = 1
	}
	b := NewBitmap(n, 1)
	b.Left, b.Top = -key.Radius, -key.TextSize-key.Radius
	return b, nil
}

// fakeAllocator hands out sequential texture IDs and tracks which are live.
type fakeAllocator struct {
	t        *testing.T
	next     TextureID
	live     map[TextureID]int
	allocs   int
	releases int
	err      error
}

func newFakeAllocator(t *testing.T) *fakeAllocator {
	return &fakeAllocator{t: t, live: make(map[TextureID]int)}
}

func (a *fakeAllocator) Allocate(b *Bitmap) (Texture, error) {
	if a.err != nil {
		return Texture{}, a.err
	}
	a.next++
	a.allocs++
	a.live[a.next] = b.ByteSize()
	return Texture{ID: a.next}, nil
}

func (a *fakeAllocator) Release(id TextureID) {
	if _, ok := a.live[id]; !ok {
		a.t.Errorf("Release(%d): texture is not live", id)
		return
	}
	delete(a.live, id)
	a.releases++
}

// liveBytes sums the sizes of textures that have not been released.
func (a *fakeAllocator) liveBytes() int {
	total := 0
	for _, n := range a.live {
		total += n
	}
	return total
}

var errAllocFailed = errors.New("out of video memory")

func newTestCache(t *testing.T, maxSize int) (*Cache, *fakeAllocator, *fakeRenderer) {
	t.Helper()
	alloc := newFakeAllocator(t)
	r := newFakeRenderer()
	c := New(WithMaxSize(maxSize), WithFontRenderer(r), WithAllocator(alloc))
	return c, alloc, r
}

func newTestTypeface(t testing.TB) *Typeface {
	t.Helper()
	return DefaultTypeface()
}

func codes(s string) []uint16 {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		out = append(out, uint16(r))
	}
	return out
}

func codesString(c []uint16) string {
	rs := make([]rune, len(c))
	for i, v := range c {
		rs[i] = rune(v)
	}
	return string(rs)
}

// mustGet requests the shadow for text, arranging for it to occupy
// byteSize bytes if it has to be rendered.
func mustGet(t *testing.T, c *Cache, tf *Typeface, text string, byteSize int) *ShadowTexture {
	t.Helper()
	if r, ok := c.renderer.(*fakeRenderer); ok {
		r.sizes[text] = byteSize
	}
	cs := codes(text)
	tex, err := c.Get(NewStyle(tf, 12), cs, len(cs), 2, nil)
	if err != nil {
		t.Fatalf("Get(%q) error: %v", text, err)
	}
	if tex == nil {
		t.Fatalf("Get(%q) returned no texture", text)
	}
	return tex
}

// checkAccounting verifies that the cache size matches its entries and the
// allocator's live textures.
func checkAccounting(t *testing.T, c *Cache, alloc *fakeAllocator) {
	t.Helper()
	sum := 0
	c.recency.Each(func(e *entry) bool {
		sum += e.texture.Size
		return true
	})
	if sum != c.Size() {
		t.Errorf("Size() = %d, entries hold %d bytes", c.Size(), sum)
	}
	if got := alloc.liveBytes(); got != c.Size() {
		t.Errorf("allocator holds %d live bytes, cache Size() = %d", got, c.Size())
	}
	if len(alloc.live) != c.Len() {
		t.Errorf("allocator has %d live textures, cache Len() = %d", len(alloc.live), c.Len())
	}
}

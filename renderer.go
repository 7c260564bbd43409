package textshadow

// FontRenderer rasterizes text shadows.
//
// RenderDropShadow receives the exact request being cached and returns the
// blurred coverage bitmap with its placement offsets. A nil bitmap, an
// empty one or an error all mean "no shadow": the cache returns nothing and
// caches nothing, so the next request renders again.
//
// Implementations must not call back into the cache.
type FontRenderer interface {
	RenderDropShadow(key KeyView) (*Bitmap, error)
}

// FontRendererFunc adapts a function to the FontRenderer interface.
type FontRendererFunc func(key KeyView) (*Bitmap, error)

// RenderDropShadow implements FontRenderer.
func (f FontRendererFunc) RenderDropShadow(key KeyView) (*Bitmap, error) {
	return f(key)
}

// Allocator creates and destroys GPU textures.
//
// Allocate uploads a bitmap into a new texture; failures must be reported
// through the error. Release frees a texture previously returned by
// Allocate. The cache calls Release exactly once per texture.
type Allocator interface {
	Allocate(b *Bitmap) (Texture, error)
	Release(id TextureID)
}

package textshadow

import (
	"image"

	"github.com/gogpu/gputypes"
)

// TextureID is an opaque handle to a GPU texture issued by an Allocator.
type TextureID uint64

// InvalidTexture is the zero TextureID.
const InvalidTexture TextureID = 0

// ShadowFormat is the pixel format of shadow textures: one coverage byte
// per pixel.
const ShadowFormat = gputypes.TextureFormatR8Unorm

// BytesPerPixel is the size of one shadow pixel.
const BytesPerPixel = 1

// Texture is the generic record of a GPU texture.
type Texture struct {
	Format gputypes.TextureFormat
	Width  int
	Height int
	ID     TextureID

	// Size is the number of bytes the texture occupies.
	Size int
}

// ShadowTexture is an alpha texture holding a rasterized text shadow.
//
// It is owned by the cache entry that created it. Its GPU resource is
// released when the entry is evicted, after which ID is InvalidTexture.
type ShadowTexture struct {
	Texture

	// Left and Top place the texture's top-left corner relative to the
	// text origin.
	Left float32
	Top  float32

	owner Allocator
}

func newShadowTexture(tex Texture, b *Bitmap, owner Allocator) *ShadowTexture {
	tex.Width = b.Width
	tex.Height = b.Height
	tex.Size = b.ByteSize()
	if tex.Format == gputypes.TextureFormatUndefined {
		tex.Format = ShadowFormat
	}
	return &ShadowTexture{
		Texture: tex,
		Left:    b.Left,
		Top:     b.Top,
		owner:   owner,
	}
}

// release hands the GPU resource back to its allocator. The handle is
// moved out first, so there is nothing left to free on a second call.
func (t *ShadowTexture) release() {
	owner, id := t.owner, t.ID
	t.owner, t.ID = nil, InvalidTexture
	if owner != nil && id != InvalidTexture {
		owner.Release(id)
	}
}

// Released reports whether the texture's GPU resource has been freed.
func (t *ShadowTexture) Released() bool {
	return t.owner == nil
}

// Bitmap is a rasterized shadow in host memory, as produced by a
// FontRenderer: Height rows of Width coverage bytes, Stride bytes apart.
type Bitmap struct {
	Width  int
	Height int
	Stride int
	Pix    []byte

	// Left and Top are the offsets of the bitmap's top-left corner from
	// the text origin (left end of the baseline).
	Left float32
	Top  float32
}

// NewBitmap allocates a zeroed bitmap.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Stride: width * BytesPerPixel,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Empty reports whether the bitmap has no content.
func (b *Bitmap) Empty() bool {
	if b == nil || b.Width <= 0 || b.Height <= 0 || b.Stride < b.Width {
		return true
	}
	return len(b.Pix) < (b.Height-1)*b.Stride+b.Width
}

// ByteSize returns the texture size the bitmap needs on the GPU.
func (b *Bitmap) ByteSize() int {
	if b == nil {
		return 0
	}
	return b.Width * b.Height * BytesPerPixel
}

// Row returns row y without its stride padding.
func (b *Bitmap) Row(y int) []byte {
	off := y * b.Stride
	return b.Pix[off : off+b.Width]
}

// Image returns an image.Alpha sharing the bitmap's pixels.
func (b *Bitmap) Image() *image.Alpha {
	return &image.Alpha{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

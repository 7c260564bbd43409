// Package gpu uploads shadow bitmaps to GPU textures through the
// gogpu/wgpu hardware abstraction layer.
//
// HALAllocator implements textshadow.Allocator. Each shadow becomes an
// R8Unorm texture with a matching view, usable as a sampled coverage mask.
//
// Usage:
//
//	alloc, err := gpu.NewHALAllocator(device, queue)
//	if err != nil {
//	    return err
//	}
//	defer alloc.Close()
//	c := textshadow.New(textshadow.WithAllocator(alloc))
package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/textshadow"
)

var (
	// ErrNilDevice is returned when an allocator is created without a
	// device or queue.
	ErrNilDevice = errors.New("gpu: nil device or queue")

	// ErrNoHALAccess is returned when a device provider does not expose
	// its HAL device and queue.
	ErrNoHALAccess = errors.New("gpu: provider does not expose HAL types")

	// ErrClosed is returned by Allocate after Close.
	ErrClosed = errors.New("gpu: allocator closed")

	// ErrEmptyBitmap is returned when asked to upload a bitmap with no
	// pixels.
	ErrEmptyBitmap = errors.New("gpu: empty bitmap")
)

// halTexture is a texture and its sampling view.
type halTexture struct {
	texture hal.Texture
	view    hal.TextureView
	width   int
	height  int
	size    int
}

// HALAllocator creates shadow textures on a HAL device.
//
// HALAllocator is safe for concurrent use.
type HALAllocator struct {
	mu       sync.Mutex
	device   hal.Device
	queue    hal.Queue
	next     textshadow.TextureID
	textures map[textshadow.TextureID]*halTexture
	bytes    int
	closed   bool

	// scratch holds tightly packed rows for bitmaps with padded strides.
	scratch []byte
}

// NewHALAllocator creates an allocator on device, uploading through queue.
// The allocator does not take ownership of either.
func NewHALAllocator(device hal.Device, queue hal.Queue) (*HALAllocator, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &HALAllocator{
		device:   device,
		queue:    queue,
		textures: make(map[textshadow.TextureID]*halTexture),
	}, nil
}

// NewAllocatorFromProvider creates an allocator on the device of a host
// application. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewAllocatorFromProvider(provider gpucontext.DeviceProvider) (*HALAllocator, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	return NewHALAllocator(device, queue)
}

// Allocate implements textshadow.Allocator. It creates an R8Unorm texture
// the size of b and uploads its pixels.
func (a *HALAllocator) Allocate(b *textshadow.Bitmap) (textshadow.Texture, error) {
	if b.Empty() {
		return textshadow.Texture{}, ErrEmptyBitmap
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return textshadow.Texture{}, ErrClosed
	}

	width := uint32(b.Width)   //nolint:gosec // bitmap dimensions are positive and bounded by the renderer
	height := uint32(b.Height) //nolint:gosec // bitmap dimensions are positive and bounded by the renderer
	extent := hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}

	a.next++
	id := a.next
	label := fmt.Sprintf("text_shadow_%d", id)

	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        textshadow.ShadowFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return textshadow.Texture{}, fmt.Errorf("gpu: create shadow texture: %w", err)
	}

	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        textshadow.ShadowFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		return textshadow.Texture{}, fmt.Errorf("gpu: create shadow texture view: %w", err)
	}

	a.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		a.packed(b),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  width * textshadow.BytesPerPixel,
			RowsPerImage: height,
		},
		&extent,
	)

	size := b.ByteSize()
	a.textures[id] = &halTexture{
		texture: tex,
		view:    view,
		width:   b.Width,
		height:  b.Height,
		size:    size,
	}
	a.bytes += size

	return textshadow.Texture{
		Format: textshadow.ShadowFormat,
		Width:  b.Width,
		Height: b.Height,
		ID:     id,
		Size:   size,
	}, nil
}

// packed returns b's pixels without row padding.
func (a *HALAllocator) packed(b *textshadow.Bitmap) []byte {
	rowBytes := b.Width * textshadow.BytesPerPixel
	if b.Stride == rowBytes {
		return b.Pix[:rowBytes*b.Height]
	}

	n := rowBytes * b.Height
	if cap(a.scratch) < n {
		a.scratch = make([]byte, n)
	}
	buf := a.scratch[:n]
	for y := range b.Height {
		copy(buf[y*rowBytes:], b.Row(y))
	}
	return buf
}

// Release implements textshadow.Allocator. Unknown IDs are ignored.
func (a *HALAllocator) Release(id textshadow.TextureID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.textures[id]
	if !ok {
		return
	}
	delete(a.textures, id)
	a.bytes -= t.size
	a.destroy(t)
}

func (a *HALAllocator) destroy(t *halTexture) {
	if t.view != nil {
		a.device.DestroyTextureView(t.view)
	}
	if t.texture != nil {
		a.device.DestroyTexture(t.texture)
	}
}

// Texture returns the HAL texture and view for id, for binding in a draw
// call. ok is false when id is not live.
func (a *HALAllocator) Texture(id textshadow.TextureID) (texture hal.Texture, view hal.TextureView, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.textures[id]
	if !ok {
		return nil, nil, false
	}
	return t.texture, t.view, true
}

// Live returns the number of textures that have not been released.
func (a *HALAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.textures)
}

// LiveBytes returns the bytes held by live textures.
func (a *HALAllocator) LiveBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bytes
}

// Close destroys every live texture. Textures still referenced by a cache
// become invalid; clear the cache first. Later Allocate calls fail with
// ErrClosed and Release calls are no-ops.
func (a *HALAllocator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	if n := len(a.textures); n > 0 {
		textshadow.Logger().Warn("destroying live shadow textures on close", "count", n, "bytes", a.bytes)
	}
	for id, t := range a.textures {
		a.destroy(t)
		delete(a.textures, id)
	}
	a.bytes = 0
	a.closed = true
}

// Package blur implements the Gaussian blur applied to shadow coverage.
//
// Shadows are single-channel (alpha-8) bitmaps. The blur is separable:
// a horizontal pass into a float buffer followed by a vertical pass back
// into the bytes, O(w*h*k) for a kernel of k taps. Pixels outside the
// bitmap count as transparent, so callers pad the bitmap by Extent(radius)
// to keep the blurred edges from being clipped.
package blur

import (
	"math"
	"sync"
)

// Sigma converts a shadow blur radius to a Gaussian standard deviation.
// It returns 0 (no blur) for radius <= 0 and for NaN or infinite radii.
func Sigma(radius float32) float64 {
	r := float64(radius)
	if !(r > 0) || math.IsInf(r, 1) {
		return 0
	}
	return 0.57735*r + 0.5
}

// Extent returns how many pixels a blur of the given radius spreads
// coverage on each side.
func Extent(radius float32) int {
	sigma := Sigma(radius)
	if sigma <= 0 {
		return 0
	}
	return int(math.Ceil(sigma * 3))
}

// GaussianKernel generates a normalized 1D Gaussian kernel of
// 2*ceil(3*sigma)+1 taps. For sigma <= 0 it returns the identity [1].
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1.0}
	}

	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, half*2+1)

	// exp(-x²/2σ²); the constant factor is dropped by normalization.
	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}

	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// kernelCache keeps recently used kernels keyed by sigma quantized to
// 0.01. Kernels are shared and must not be modified.
type kernelCache struct {
	mu      sync.RWMutex
	kernels map[int][]float32
	maxLen  int
}

var defaultKernels = newKernelCache(32)

func newKernelCache(maxLen int) *kernelCache {
	return &kernelCache{
		kernels: make(map[int][]float32),
		maxLen:  maxLen,
	}
}

func (c *kernelCache) get(sigma float64) []float32 {
	key := int(math.Round(sigma * 100))

	c.mu.RLock()
	kernel, ok := c.kernels[key]
	c.mu.RUnlock()
	if ok {
		return kernel
	}

	kernel = GaussianKernel(float64(key) / 100)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.kernels) >= c.maxLen {
		// Shadow radii in an application are few; dropping the whole set
		// on overflow is enough.
		clear(c.kernels)
	}
	c.kernels[key] = kernel
	return kernel
}

// CachedGaussianKernel returns a shared kernel for sigma. Callers must not
// modify the result.
func CachedGaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1.0}
	}
	return defaultKernels.get(sigma)
}

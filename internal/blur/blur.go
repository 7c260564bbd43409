package blur

import "sync"

// Alpha blurs an alpha-8 buffer in place with the Gaussian for radius.
// pix holds h rows of w bytes, stride bytes apart. Bytes between w and
// stride are left untouched. A radius <= 0 or an empty buffer is a no-op.
func Alpha(pix []byte, w, h, stride int, radius float32) {
	if radius <= 0 || w <= 0 || h <= 0 || stride < w || len(pix) < (h-1)*stride+w {
		return
	}

	kernel := CachedGaussianKernel(Sigma(radius))
	if len(kernel) == 1 {
		return
	}

	temp := getTempBuffer(w * h)
	defer putTempBuffer(temp)

	horizontal(pix, temp.data, w, h, stride, kernel)
	vertical(temp.data, pix, w, h, stride, kernel)
}

// horizontal convolves each row of src into temp (w floats per row).
func horizontal(src []byte, temp []float32, w, h, stride int, kernel []float32) {
	half := len(kernel) / 2
	for y := range h {
		row := src[y*stride : y*stride+w]
		out := temp[y*w : y*w+w]
		for x := range w {
			lo, hi := max(x-half, 0), min(x+half, w-1)
			var sum float32
			for sx := lo; sx <= hi; sx++ {
				sum += float32(row[sx]) * kernel[sx-x+half]
			}
			out[x] = sum
		}
	}
}

// vertical convolves each column of temp back into dst.
func vertical(temp []float32, dst []byte, w, h, stride int, kernel []float32) {
	half := len(kernel) / 2
	for y := range h {
		lo, hi := max(y-half, 0), min(y+half, h-1)
		row := dst[y*stride : y*stride+w]
		for x := range w {
			var sum float32
			for sy := lo; sy <= hi; sy++ {
				sum += temp[sy*w+x] * kernel[sy-y+half]
			}
			row[x] = clampUint8(sum)
		}
	}
}

// floatBuffer wraps a slice for sync.Pool.
type floatBuffer struct {
	data []float32
}

var tempBufferPool = sync.Pool{
	New: func() any {
		return &floatBuffer{data: make([]float32, 256*256)}
	},
}

// getTempBuffer returns a buffer of exactly n floats. Every element is
// overwritten by the horizontal pass, so it is not cleared.
func getTempBuffer(n int) *floatBuffer {
	buf := tempBufferPool.Get().(*floatBuffer)
	if cap(buf.data) < n {
		buf.data = make([]float32, n)
	}
	buf.data = buf.data[:n]
	return buf
}

// putTempBuffer returns buf to the pool unless it is very large.
func putTempBuffer(buf *floatBuffer) {
	if cap(buf.data) <= 4*1024*1024 {
		tempBufferPool.Put(buf)
	}
}

// clampUint8 rounds v to the nearest byte, clamped to [0, 255].
func clampUint8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

package raster

// dilate grows coverage by d pixels in every direction with a separable
// square max filter. It is how synthetic bold thickens strokes before the
// blur.
func dilate(pix []byte, w, h, stride, d int) {
	if d <= 0 || w <= 0 || h <= 0 {
		return
	}

	line := make([]byte, max(w, h))

	for y := range h {
		row := pix[y*stride : y*stride+w]
		copy(line, row)
		for x := range w {
			row[x] = maxIn(line[max(x-d, 0) : min(x+d, w-1)+1])
		}
	}

	for x := range w {
		for y := range h {
			line[y] = pix[y*stride+x]
		}
		for y := range h {
			pix[y*stride+x] = maxIn(line[max(y-d, 0) : min(y+d, h-1)+1])
		}
	}
}

func maxIn(s []byte) byte {
	var m byte
	for _, v := range s {
		m = max(m, v)
	}
	return m
}

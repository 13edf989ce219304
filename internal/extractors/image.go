package extractors

import "image"

// grayscale converts an image to a float64 luma plane using the ITU-R
// 601-2 weights, matching the analysis the baselines were gathered with.
func grayscale(img image.Image) [][]float64 {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		row := make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit channels.
			row[x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
		}
		out[y] = row
	}
	return out
}

// rgbPlanes extracts 8-bit-scaled R, G, B planes.
func rgbPlanes(img image.Image) (r, g, b [][]float64) {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	r = make([][]float64, h)
	g = make([][]float64, h)
	b = make([][]float64, h)
	for y := 0; y < h; y++ {
		r[y] = make([]float64, w)
		g[y] = make([]float64, w)
		b[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			pr, pg, pb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r[y][x] = float64(pr) / 257.0
			g[y][x] = float64(pg) / 257.0
			b[y][x] = float64(pb) / 257.0
		}
	}
	return r, g, b
}

// downscale resizes a plane so its longest side is at most maxDim,
// using bilinear interpolation. Planes already small enough are
// returned as-is.
func downscale(plane [][]float64, maxDim int) [][]float64 {
	h := len(plane)
	if h == 0 {
		return plane
	}
	w := len(plane[0])
	longest := h
	if w > longest {
		longest = w
	}
	if longest <= maxDim {
		return plane
	}

	scale := float64(maxDim) / float64(longest)
	nh := int(float64(h) * scale)
	nw := int(float64(w) * scale)
	if nh < 1 {
		nh = 1
	}
	if nw < 1 {
		nw = 1
	}

	out := make([][]float64, nh)
	for y := 0; y < nh; y++ {
		out[y] = make([]float64, nw)
		srcY := float64(y) / scale
		y0 := int(srcY)
		y1 := y0 + 1
		if y1 >= h {
			y1 = h - 1
		}
		fy := srcY - float64(y0)
		for x := 0; x < nw; x++ {
			srcX := float64(x) / scale
			x0 := int(srcX)
			x1 := x0 + 1
			if x1 >= w {
				x1 = w - 1
			}
			fx := srcX - float64(x0)

			top := plane[y0][x0]*(1-fx) + plane[y0][x1]*fx
			bottom := plane[y1][x0]*(1-fx) + plane[y1][x1]*fx
			out[y][x] = top*(1-fy) + bottom*fy
		}
	}
	return out
}

func planeDims(plane [][]float64) (h, w int) {
	h = len(plane)
	if h > 0 {
		w = len(plane[0])
	}
	return h, w
}

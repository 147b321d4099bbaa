package raster

import "fmt"

// Downsize shrinks the image by the given percentages, each in [0, 100).
//
// Output cell (i, j) maps back to (i/newW*W, j/newH*H). When both mapped
// coordinates are whole the source pixel is copied; otherwise the mapped
// coordinates are floored and the plus-shaped neighbours that exist around
// that cell are averaged, rounding half up. The fractional part never weighs in.
// The mapping is computed on integers so that whole coordinates are detected
// exactly, which keeps a 0%/0% downsize the identity for every size.
func (m *Image) Downsize(widthPercent, heightPercent int) (*Image, error) {
	if !validPercent(widthPercent) || !validPercent(heightPercent) {
		return nil, fmt.Errorf("downsize: %w: %d%%, %d%%", ErrInvalidPercent, widthPercent, heightPercent)
	}
	newW := int(roundHalfUp(float64(m.width*(100-widthPercent)) / 100.0))
	newH := int(roundHalfUp(float64(m.height*(100-heightPercent)) / 100.0))
	if newW <= 0 || newH <= 0 {
		return nil, fmt.Errorf("downsize: %w: %w: %dx%d", ErrInvalidImage, ErrInvalidDimensions, newW, newH)
	}
	pix, err := mapPixels(newW, newH, func(i, j int) (Pixel, error) {
		ox, xWhole := mapBack(i, newW, m.width)
		oy, yWhole := mapBack(j, newH, m.height)
		if xWhole && yWhole {
			return m.pix[oy*m.width+ox], nil
		}
		return m.averageAround(ox, oy)
	})
	if err != nil {
		return nil, fmt.Errorf("downsize: %w", err)
	}
	return newImage(newW, newH, m.maxValue, pix)
}

// averageAround averages the in-bounds pixels at (x, y-1), (x, y+1),
// (x-1, y) and (x+1, y).
func (m *Image) averageAround(x, y int) (Pixel, error) {
	var r, g, b, n int
	for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= m.width || ny < 0 || ny >= m.height {
			continue
		}
		p := m.pix[ny*m.width+nx]
		r += p.Red()
		g += p.Green()
		b += p.Blue()
		n++
	}
	if n == 0 {
		// Only a 1x1 source has no neighbours, and its single cell maps exactly.
		return m.pix[y*m.width+x], nil
	}
	avg := func(sum int) int { return int(roundHalfUp(float64(sum) / float64(n))) }
	return NewPixel(avg(r), avg(g), avg(b))
}

func validPercent(p int) bool {
	return p >= 0 && p < 100
}

// mapBack returns floor(i*from/to) and whether the division is exact.
func mapBack(i, to, from int) (int, bool) {
	n := i * from
	return n / to, n%to == 0
}

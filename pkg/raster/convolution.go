package raster

import "fmt"

// Filter convolves the image with a square kernel of odd side.
//
// kernel[a][b] weighs the source pixel at (x+a-c, y+b-c) where c is the
// kernel's center index. Taps that land outside the image are skipped and the
// remaining weights are not renormalised. Each channel accumulates into an
// integer: every weighted tap is added to the running sum and the result is
// truncated toward zero, saturating at the int32 range, before the next tap. The final sum is clamped to
// [0, MaxValue].
func (m *Image) Filter(kernel [][]float64) (*Image, error) {
	if err := checkKernel(kernel); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	size := len(kernel)
	center := size / 2
	pix, err := mapPixels(m.width, m.height, func(x, y int) (Pixel, error) {
		var r, g, b int
		for a := 0; a < size; a++ {
			sx := x + a - center
			if sx < 0 || sx >= m.width {
				continue
			}
			for c := 0; c < size; c++ {
				sy := y + c - center
				if sy < 0 || sy >= m.height {
					continue
				}
				k := kernel[a][c]
				p := m.pix[sy*m.width+sx]
				r = toInt32(float64(r) + k*float64(p.r))
				g = toInt32(float64(g) + k*float64(p.g))
				b = toInt32(float64(b) + k*float64(p.b))
			}
		}
		return NewPixel(clampInt(r, 0, m.maxValue), clampInt(g, 0, m.maxValue), clampInt(b, 0, m.maxValue))
	})
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return newImage(m.width, m.height, m.maxValue, pix)
}

func checkKernel(kernel [][]float64) error {
	if kernel == nil {
		return ErrNullKernel
	}
	size := len(kernel)
	if size%2 != 1 {
		return fmt.Errorf("%w: side %d", ErrInvalidKernelShape, size)
	}
	for i, row := range kernel {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrInvalidKernelShape, i, len(row), size)
		}
	}
	return nil
}

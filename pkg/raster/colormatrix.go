package raster

import "fmt"

// Transform applies a 3x3 linear color matrix to every pixel.
//
// Output channel k is round(r*m[k][0]) + g*m[k][1] + b*m[k][2], truncated
// toward zero (saturating at the int32 range) and clamped to [0, MaxValue]. Only the red product is rounded.
func (m *Image) Transform(matrix [][]float64) (*Image, error) {
	if matrix == nil {
		return nil, fmt.Errorf("transform: %w", ErrNullMatrix)
	}
	if len(matrix) != 3 {
		return nil, fmt.Errorf("transform: %w: %d rows", ErrInvalidMatrixShape, len(matrix))
	}
	for i, row := range matrix {
		if len(row) != 3 {
			return nil, fmt.Errorf("transform: %w: row %d has %d entries", ErrInvalidMatrixShape, i, len(row))
		}
	}
	channel := func(row []float64, p Pixel) int {
		v := toInt32(roundHalfUp(float64(p.r)*row[0]) + float64(p.g)*row[1] + float64(p.b)*row[2])
		return clampInt(v, 0, m.maxValue)
	}
	pix, err := mapPixels(m.width, m.height, func(x, y int) (Pixel, error) {
		p := m.pix[y*m.width+x]
		return NewPixel(channel(matrix[0], p), channel(matrix[1], p), channel(matrix[2], p))
	})
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return newImage(m.width, m.height, m.maxValue, pix)
}

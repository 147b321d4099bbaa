package raster

import "fmt"

// Brighten adds value to every channel, saturating at the image's max value.
func (m *Image) Brighten(value int) (*Image, error) {
	if value <= 0 {
		return nil, fmt.Errorf("brighten: %w: %d", ErrNonPositiveValue, value)
	}
	// Any value of at least maxValue saturates, so cap it before adding.
	step := min(value, m.maxValue)
	return m.shift(func(c int) int { return min(m.maxValue, c+step) })
}

// Darken subtracts value from every channel, saturating at zero.
func (m *Image) Darken(value int) (*Image, error) {
	if value <= 0 {
		return nil, fmt.Errorf("darken: %w: %d", ErrNonPositiveValue, value)
	}
	return m.shift(func(c int) int { return max(0, c-value) })
}

func (m *Image) shift(f func(int) int) (*Image, error) {
	pix, err := mapPixels(m.width, m.height, func(x, y int) (Pixel, error) {
		p := m.pix[y*m.width+x]
		return NewPixel(f(p.Red()), f(p.Green()), f(p.Blue()))
	})
	if err != nil {
		return nil, err
	}
	return newImage(m.width, m.height, m.maxValue, pix)
}

package raster

import (
	"fmt"
	"strings"
)

// Component selects the scalar a greyscale projection keeps.
type Component int

const (
	noComponent Component = iota
	Red
	Green
	Blue
	Value
	Intensity
	Luma
)

var componentNames = map[Component]string{
	Red:       "red",
	Green:     "green",
	Blue:      "blue",
	Value:     "value",
	Intensity: "intensity",
	Luma:      "luma",
}

func (c Component) String() string {
	if s, ok := componentNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Component(%d)", int(c))
}

// ParseComponent maps a name such as "luma" to its Component.
func ParseComponent(s string) (Component, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range componentNames {
		if name == s {
			return c, nil
		}
	}
	return noComponent, fmt.Errorf("%w: %q", ErrNullSelector, s)
}

// Measure returns the component's scalar for p.
func (c Component) Measure(p Pixel) (int, error) {
	r, g, b := p.Red(), p.Green(), p.Blue()
	switch c {
	case Red:
		return r, nil
	case Green:
		return g, nil
	case Blue:
		return b, nil
	case Value:
		return max(r, g, b), nil
	case Intensity:
		return intensity(r, g, b), nil
	case Luma:
		return int(roundHalfUp(0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b))), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrNullSelector, c)
}

// intensity is the channel mean truncated toward zero.
func intensity(r, g, b int) int {
	return int(float64(r+g+b) / 3.0)
}

// Greyscale replaces every pixel with (v, v, v) where v is the selected component.
func (m *Image) Greyscale(c Component) (*Image, error) {
	if _, ok := componentNames[c]; !ok {
		return nil, fmt.Errorf("greyscale: %w: %v", ErrNullSelector, c)
	}
	pix, err := mapPixels(m.width, m.height, func(x, y int) (Pixel, error) {
		v, err := c.Measure(m.pix[y*m.width+x])
		if err != nil {
			return Pixel{}, err
		}
		return NewPixel(v, v, v)
	})
	if err != nil {
		return nil, fmt.Errorf("greyscale %v: %w", c, err)
	}
	return newImage(m.width, m.height, m.maxValue, pix)
}

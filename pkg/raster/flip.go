package raster

import (
	"fmt"
	"strings"
)

// FlipType is the mirror axis for Flip.
type FlipType int

const (
	noFlip FlipType = iota
	// Horizontal mirrors across the vertical center axis (columns swap).
	Horizontal
	// Vertical mirrors across the horizontal center axis (rows swap).
	Vertical
)

func (f FlipType) String() string {
	switch f {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("FlipType(%d)", int(f))
}

// ParseFlipType maps "horizontal" or "vertical" to a FlipType.
func ParseFlipType(s string) (FlipType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return noFlip, fmt.Errorf("%w: %q", ErrNullFlipType, s)
}

// Flip mirrors the image along the given axis.
func (m *Image) Flip(f FlipType) (*Image, error) {
	w, h := m.width, m.height
	var src func(x, y int) int
	switch f {
	case Horizontal:
		src = func(x, y int) int { return y*w + (w - 1 - x) }
	case Vertical:
		src = func(x, y int) int { return (h-1-y)*w + x }
	default:
		return nil, fmt.Errorf("flip: %w: %v", ErrNullFlipType, f)
	}
	pix, err := mapPixels(w, h, func(x, y int) (Pixel, error) {
		return m.pix[src(x, y)], nil
	})
	if err != nil {
		return nil, err
	}
	return newImage(w, h, m.maxValue, pix)
}

package raster

import (
	"fmt"
	"image/color"
)

// MaxChannel is the largest value a single Pixel channel can hold.
const MaxChannel = 255

// Pixel is an immutable RGB sample. The zero value is black.
type Pixel struct {
	r, g, b uint8
}

// NewPixel builds a Pixel, rejecting any channel outside [0, 255].
func NewPixel(r, g, b int) (Pixel, error) {
	if !inChannelRange(r) || !inChannelRange(g) || !inChannelRange(b) {
		return Pixel{}, fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfRange, r, g, b)
	}
	return Pixel{uint8(r), uint8(g), uint8(b)}, nil
}

// MustPixel is NewPixel for literals known to be in range. It panics otherwise.
func MustPixel(r, g, b int) Pixel {
	p, err := NewPixel(r, g, b)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pixel) Red() int   { return int(p.r) }
func (p Pixel) Green() int { return int(p.g) }
func (p Pixel) Blue() int  { return int(p.b) }

func (p Pixel) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.r, p.g, p.b)
}

// NRGBA returns the pixel as an opaque color.NRGBA.
func (p Pixel) NRGBA() color.NRGBA {
	return color.NRGBA{R: p.r, G: p.g, B: p.b, A: 0xff}
}

func inChannelRange(v int) bool {
	return v >= 0 && v <= MaxChannel
}

package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Bins is the number of buckets per histogram channel.
const Bins = 256

// Default chart size used by the histogram command.
const (
	DefaultHistogramWidth  = 600
	DefaultHistogramHeight = 300
)

// Histogram holds per-channel value frequencies of an image.
type Histogram struct {
	Red, Green, Blue, Intensity [Bins]int
}

// NewHistogram counts channel values of every pixel in m. Intensity uses the
// same truncated mean as the Intensity greyscale component.
func NewHistogram(m *Image) Histogram {
	var h Histogram
	for _, p := range m.pix {
		r, g, b := p.Red(), p.Green(), p.Blue()
		h.Red[r]++
		h.Green[g]++
		h.Blue[b]++
		h.Intensity[intensity(r, g, b)]++
	}
	return h
}

// Max returns the largest bin count across all four channels.
func (h Histogram) Max() int {
	m := 0
	for i := 0; i < Bins; i++ {
		m = max(m, h.Red[i], h.Green[i], h.Blue[i], h.Intensity[i])
	}
	return m
}

var (
	histBackground = color.NRGBA{255, 255, 255, 255}
	histRed        = color.NRGBA{255, 0, 0, 255}
	histGreen      = color.NRGBA{0, 255, 0, 255}
	histBlue       = color.NRGBA{0, 0, 255, 255}
	histIntensity  = color.NRGBA{0, 0, 0, 255}
)

// Render draws the four frequency curves as polylines on a white chart of
// the given size, scaled so the tallest bin touches the top edge, with a
// small legend in the corner.
func (h Histogram) Render(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("histogram: %w: %dx%d", ErrInvalidDimensions, width, height)
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(histBackground), image.Point{}, draw.Src)

	var xs [Bins]int
	for i := range xs {
		xs[i] = int(roundHalfUp(float64(width) / float64(Bins) * float64(i)))
	}
	scale := 0.0
	if m := h.Max(); m > 0 {
		scale = float64(height-1) / float64(m)
	}
	curve := func(bins *[Bins]int, c color.NRGBA) {
		var ys [Bins]int
		for i, n := range bins {
			ys[i] = height - 1 - int(float64(n)*scale)
		}
		for i := 1; i < Bins; i++ {
			drawLine(out, xs[i-1], ys[i-1], xs[i], ys[i], c)
		}
	}
	curve(&h.Red, histRed)
	curve(&h.Green, histGreen)
	curve(&h.Blue, histBlue)
	curve(&h.Intensity, histIntensity)

	legend(out, []legendEntry{
		{"red", histRed},
		{"green", histGreen},
		{"blue", histBlue},
		{"intensity", histIntensity},
	})
	return FromImage(out)
}

type legendEntry struct {
	label string
	col   color.NRGBA
}

func legend(dst *image.NRGBA, entries []legendEntry) {
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	for i, e := range entries {
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(e.col),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(lineH * (i + 1))},
		}
		d.DrawString(e.label)
	}
}

// drawLine plots a Bresenham line, ignoring points outside dst.
func drawLine(dst *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	b := dst.Bounds()
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(b) {
			dst.SetNRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

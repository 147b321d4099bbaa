package raster

import (
	"image"
	"image/color"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelMinRows is the image height below which operations stay on the
// calling goroutine.
const parallelMinRows = 64

// FromImage converts any image.Image into an Image with a ceiling of 255.
// Alpha is dropped; the straight (non-premultiplied) color is kept.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]Pixel, w*h)
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := n.PixOffset(b.Min.X+x, b.Min.Y+y)
				pix[y*w+x] = Pixel{n.Pix[i+0], n.Pix[i+1], n.Pix[i+2]}
			}
		}
		return newImage(w, h, MaxChannel, pix)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			pix[y*w+x] = Pixel{c.R, c.G, c.B}
		}
	}
	return newImage(w, h, MaxChannel, pix)
}

// ToNRGBA copies m into a new *image.NRGBA with full alpha.
func ToNRGBA(m *Image) *image.NRGBA {
	out := image.NewNRGBA(m.Bounds())
	for i, p := range m.pix {
		out.Pix[i*4+0] = p.r
		out.Pix[i*4+1] = p.g
		out.Pix[i*4+2] = p.b
		out.Pix[i*4+3] = 0xff
	}
	return out
}

// mapPixels evaluates fn for every cell of a width x height grid and returns
// the row-major result. Rows are split into one band per GOMAXPROCS worker;
// the first error from any band is returned.
func mapPixels(width, height int, fn func(x, y int) (Pixel, error)) ([]Pixel, error) {
	out := make([]Pixel, width*height)
	band := func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			row := out[y*width : (y+1)*width]
			for x := range row {
				p, err := fn(x, y)
				if err != nil {
					return err
				}
				row[x] = p
			}
		}
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if height < parallelMinRows || workers <= 1 {
		if err := band(0, height); err != nil {
			return nil, err
		}
		return out, nil
	}

	chunk := (height + workers - 1) / workers
	var g errgroup.Group
	for wi := 0; wi < workers; wi++ {
		y0 := wi * chunk
		y1 := min(y0+chunk, height)
		if y0 >= y1 {
			continue
		}
		g.Go(func() error { return band(y0, y1) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// roundHalfUp rounds to the nearest integer with ties going toward +Inf.
// math.Round sends negative ties away from zero, which is not the same.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// toInt32 truncates v toward zero and saturates at the int32 range, so
// accumulators never wrap on extreme weights. NaN becomes 0.
func toInt32(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

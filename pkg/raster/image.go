package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Image is an immutable width x height grid of Pixels with a per-channel
// ceiling (maxValue) used by the arithmetic operations. Pixels are stored
// row-major; the public grid API is addressed [x][y].
type Image struct {
	width, height int
	maxValue      int
	pix           []Pixel
}

// New validates grid against the given dimensions and copies it into a new Image.
// grid is indexed [x][y] and must be exactly width columns of height cells.
func New(width, height, maxValue int, grid [][]Pixel) (*Image, error) {
	if width <= 0 || height <= 0 || maxValue <= 0 {
		return nil, fmt.Errorf("%w: %w: %dx%d max %d", ErrInvalidImage, ErrInvalidDimensions, width, height, maxValue)
	}
	if grid == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, ErrNullGrid)
	}
	if len(grid) != width {
		return nil, fmt.Errorf("%w: %w: %d columns, want %d", ErrInvalidImage, ErrDimensionMismatch, len(grid), width)
	}
	pix := make([]Pixel, width*height)
	for x, col := range grid {
		if col == nil {
			return nil, fmt.Errorf("%w: %w: column %d", ErrInvalidImage, ErrNullPixel, x)
		}
		if len(col) != height {
			return nil, fmt.Errorf("%w: %w: column %d has %d rows, want %d", ErrInvalidImage, ErrDimensionMismatch, x, len(col), height)
		}
		for y, p := range col {
			pix[y*width+x] = p
		}
	}
	return &Image{width: width, height: height, maxValue: maxValue, pix: pix}, nil
}

// newImage wraps an already row-major backing slice. pix is owned by the result.
func newImage(width, height, maxValue int, pix []Pixel) (*Image, error) {
	if width <= 0 || height <= 0 || maxValue <= 0 {
		return nil, fmt.Errorf("%w: %w: %dx%d max %d", ErrInvalidImage, ErrInvalidDimensions, width, height, maxValue)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %w: %d pixels for %dx%d", ErrInvalidImage, ErrDimensionMismatch, len(pix), width, height)
	}
	return &Image{width: width, height: height, maxValue: maxValue, pix: pix}, nil
}

func (m *Image) Width() int    { return m.width }
func (m *Image) Height() int   { return m.height }
func (m *Image) MaxValue() int { return m.maxValue }

// PixelAt returns the pixel in column x, row y. It panics when out of bounds,
// like a slice index.
func (m *Image) PixelAt(x, y int) Pixel {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		panic(fmt.Sprintf("raster: pixel (%d, %d) out of bounds %dx%d", x, y, m.width, m.height))
	}
	return m.pix[y*m.width+x]
}

// Pixels returns a fresh [x][y] copy of the grid. Mutating it does not affect m.
func (m *Image) Pixels() [][]Pixel {
	grid := make([][]Pixel, m.width)
	for x := range grid {
		col := make([]Pixel, m.height)
		for y := range col {
			col[y] = m.pix[y*m.width+x]
		}
		grid[x] = col
	}
	return grid
}

// Equal reports whether both images have the same dimensions, ceiling and pixels.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.width != o.width || m.height != o.height || m.maxValue != o.maxValue {
		return false
	}
	for i, p := range m.pix {
		if o.pix[i] != p {
			return false
		}
	}
	return true
}

// ColorModel, Bounds and At let an Image be handed to image/* encoders.
func (m *Image) ColorModel() color.Model { return color.NRGBAModel }

func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

func (m *Image) At(x, y int) color.Color {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return color.NRGBA{}
	}
	return m.pix[y*m.width+x].NRGBA()
}

// Opaque reports that the image has no transparency, letting encoders skip alpha.
func (m *Image) Opaque() bool { return true }

package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akale22/Image-Manipulator/pkg/raster"
)

// ErrMalformedPPM is returned for plain PPM input that cannot be parsed.
var ErrMalformedPPM = errors.New("malformed PPM")

// DecodePPM reads a plain-text (P3) PPM. Lines whose first character is '#'
// are comments and are ignored entirely.
func DecodePPM(r io.Reader) (*raster.Image, error) {
	var body strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ppm: %w", err)
	}

	tokens := strings.Fields(body.String())
	if len(tokens) == 0 || tokens[0] != "P3" {
		return nil, fmt.Errorf("%w: missing P3 header", ErrMalformedPPM)
	}
	pos := 1
	next := func(what string) (int, error) {
		if pos >= len(tokens) {
			return 0, fmt.Errorf("%w: unexpected end of data reading %s", ErrMalformedPPM, what)
		}
		v, err := strconv.Atoi(tokens[pos])
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformedPPM, what, tokens[pos])
		}
		pos++
		return v, nil
	}

	width, err := next("width")
	if err != nil {
		return nil, err
	}
	height, err := next("height")
	if err != nil {
		return nil, err
	}
	maxValue, err := next("max value")
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrMalformedPPM, raster.ErrInvalidDimensions, width, height)
	}
	// The header must not size the grid beyond the samples actually present.
	if avail := (len(tokens) - pos) / 3; height > avail || width > avail/height {
		return nil, fmt.Errorf("%w: %dx%d header but only %d samples", ErrMalformedPPM, width, height, len(tokens)-pos)
	}

	grid := make([][]raster.Pixel, width)
	for x := range grid {
		grid[x] = make([]raster.Pixel, height)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var ch [3]int
			for i := range ch {
				if ch[i], err = next("sample"); err != nil {
					return nil, err
				}
			}
			p, err := raster.NewPixel(ch[0], ch[1], ch[2])
			if err != nil {
				return nil, fmt.Errorf("%w: pixel (%d, %d): %w", ErrMalformedPPM, x, y, err)
			}
			grid[x][y] = p
		}
	}
	return raster.New(width, height, maxValue, grid)
}

// EncodePPM writes img as plain-text PPM: the P3 magic, "width height", the
// max value, then every channel value on its own line in row-major order.
func EncodePPM(w io.Writer, img *raster.Image) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n%d\n", img.Width(), img.Height(), img.MaxValue())
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			p := img.PixelAt(x, y)
			fmt.Fprintf(bw, "%d\n%d\n%d\n", p.Red(), p.Green(), p.Blue())
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ppm: %w", err)
	}
	return nil
}

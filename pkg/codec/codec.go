// Package codec reads and writes raster images in the supported file formats.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yhsif.com/immutable"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/akale22/Image-Manipulator/pkg/logger"
	"github.com/akale22/Image-Manipulator/pkg/raster"
)

// Format names a file format.
type Format string

const (
	PPM  Format = "ppm"
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	GIF  Format = "gif"
	WebP Format = "webp"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is unset.
const DefaultJPEGQuality = 92

var ErrUnsupportedFormat = errors.New("unsupported image format")

var extensions = map[string]Format{
	".ppm":  PPM,
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
	".gif":  GIF,
	".webp": WebP,
}

// There is no pure-Go WebP encoder, so WebP is read-only.
var writable = immutable.SetLiteral(PPM, PNG, JPEG, BMP, TIFF, GIF)

// Options tunes encoding.
type Options struct {
	JPEGQuality int
}

// FormatFromPath picks the format from the file extension, case-insensitively.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// CanWrite reports whether Encode supports f.
func CanWrite(f Format) bool {
	return writable.Contains(f)
}

// Decode reads an image of format f from r. Raster formats decode with a
// max value of 255 and lose any alpha channel.
func Decode(r io.Reader, f Format) (*raster.Image, error) {
	var (
		img image.Image
		err error
	)
	switch f {
	case PPM:
		return DecodePPM(r)
	case PNG:
		img, err = png.Decode(r)
	case JPEG:
		img, err = jpeg.Decode(r)
	case BMP:
		img, err = bmp.Decode(r)
	case TIFF:
		img, err = tiff.Decode(r)
	case GIF:
		img, err = gif.Decode(r)
	case WebP:
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return raster.FromImage(img)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img *raster.Image, f Format, opts Options) error {
	var err error
	switch f {
	case PPM:
		return EncodePPM(w, img)
	case PNG:
		enc := png.Encoder{BufferPool: pngPool}
		err = enc.Encode(w, raster.ToNRGBA(img))
	case JPEG:
		q := opts.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case BMP:
		err = bmp.Encode(w, raster.ToNRGBA(img))
	case TIFF:
		err = tiff.Encode(w, raster.ToNRGBA(img), &tiff.Options{Compression: tiff.Deflate})
	case GIF:
		err = gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w for writing: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Load reads the image at path. JPEG files are turned upright according to
// their EXIF orientation when a flip can do it.
func Load(ctx context.Context, path string) (*raster.Image, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	img, err := Decode(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	if f != JPEG {
		return img, nil
	}

	log := logger.For(ctx).With("file", path)
	o, err := jpegOrientation(data)
	if err != nil {
		if !errors.Is(err, errNoOrientation) {
			log.Debug("could not read exif orientation", "error", err)
		}
		return img, nil
	}
	oriented, ok, err := orient(img, o)
	if err != nil {
		return nil, fmt.Errorf("orient %q: %w", path, err)
	}
	if !ok {
		log.Warn("exif orientation needs a transpose, keeping stored layout", "orientation", o)
		return img, nil
	}
	if o != 1 {
		log.Debug("applied exif orientation", "orientation", o)
	}
	return oriented, nil
}

// Save writes img to path, choosing the format from the extension. The data
// goes to a temporary file in the same directory which is renamed over path
// only once encoding succeeded.
func Save(ctx context.Context, path string, img *raster.Image, opts Options) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if !CanWrite(f) {
		return fmt.Errorf("%w for writing: %q", ErrUnsupportedFormat, f)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", path, err)
	}
	canRename := false
	defer func() {
		if defErr := tmp.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination for %q: %w", path, defErr)
		}
		if canRename && err == nil {
			if defErr := os.Rename(tmp.Name(), path); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", path, defErr)
			}
		}
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("could not set mode on temporary destination for %q: %w", path, err)
	}
	if err = Encode(tmp, img, f, opts); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("could not flush temporary destination for %q: %w", path, err)
	}
	canRename = true
	logger.For(ctx).Debug("saved image", "file", path, "format", f,
		"width", img.Width(), "height", img.Height())
	return nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}

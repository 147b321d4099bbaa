package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akale22/Image-Manipulator/pkg/codec"
	"github.com/akale22/Image-Manipulator/pkg/logger"
	"github.com/akale22/Image-Manipulator/pkg/raster"
	"github.com/akale22/Image-Manipulator/pkg/store"
)

var (
	// ErrUnknownCommand is returned for a verb missing from Commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrArity is returned when a verb gets the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrNoPreview is returned by the preview verb when no previewer is set.
	ErrNoPreview = errors.New("preview is not available")
)

// PreviewFunc displays an image somewhere outside the store.
type PreviewFunc func(ctx context.Context, img *raster.Image) error

// Options carries everything a verb needs besides the store.
type Options struct {
	Codec   codec.Options
	Out     io.Writer // list and help output; discarded when nil
	Preview PreviewFunc
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

// Apply executes one verb against st. Transform verbs read src and store the
// result under dest; src is never modified.
func Apply(ctx context.Context, st *store.Store, verb string, args []string, opts Options) error {
	spec, ok := Lookup(verb)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
	}
	if len(args) != len(spec.Args) {
		return fmt.Errorf("%w: %s takes %d, got %d (usage: %s)", ErrArity, verb, len(spec.Args), len(args), spec.Usage)
	}
	log := logger.For(ctx)

	switch verb {
	case "load":
		img, err := codec.Load(ctx, args[0])
		if err != nil {
			return err
		}
		return st.Put(args[1], img)

	case "save":
		img, err := st.Get(args[1])
		if err != nil {
			return err
		}
		return codec.Save(ctx, args[0], img, opts.Codec)

	case "red-component", "green-component", "blue-component",
		"value-component", "intensity-component", "luma-component":
		c, err := raster.ParseComponent(strings.TrimSuffix(verb, "-component"))
		if err != nil {
			return err
		}
		return transform(st, args[0], args[1], func(m *raster.Image) (*raster.Image, error) {
			return m.Greyscale(c)
		})

	case "horizontal-flip", "vertical-flip":
		f, err := raster.ParseFlipType(strings.TrimSuffix(verb, "-flip"))
		if err != nil {
			return err
		}
		return transform(st, args[0], args[1], func(m *raster.Image) (*raster.Image, error) {
			return m.Flip(f)
		})

	case "brighten", "darken":
		n, err := parseInt(args[0])
		if err != nil {
			return fmt.Errorf("%s value: %w", verb, err)
		}
		return transform(st, args[1], args[2], func(m *raster.Image) (*raster.Image, error) {
			if verb == "brighten" {
				return m.Brighten(n)
			}
			return m.Darken(n)
		})

	case "blur":
		return transform(st, args[0], args[1], func(m *raster.Image) (*raster.Image, error) {
			return m.Filter(raster.BlurKernel())
		})

	case "sharpen":
		return transform(st, args[0], args[1], func(m *raster.Image) (*raster.Image, error) {
			return m.Filter(raster.SharpenKernel())
		})

	case "greyscale":
		return transform(st, args[0], args[1], func(m *raster.Image) (*raster.Image, error) {
			return m.Transform(raster.LumaMatrix())
		})

	case "sepia":
		return transform(st, args[0], args[1], func(m *raster.Image) (*raster.Image, error) {
			return m.Transform(raster.SepiaMatrix())
		})

	case "downsize":
		wp, err := parsePercent(args[0])
		if err != nil {
			return fmt.Errorf("downsize width: %w", err)
		}
		hp, err := parsePercent(args[1])
		if err != nil {
			return fmt.Errorf("downsize height: %w", err)
		}
		return transform(st, args[2], args[3], func(m *raster.Image) (*raster.Image, error) {
			return m.Downsize(wp, hp)
		})

	case "histogram":
		return transform(st, args[0], args[1], func(m *raster.Image) (*raster.Image, error) {
			return raster.NewHistogram(m).Render(raster.DefaultHistogramWidth, raster.DefaultHistogramHeight)
		})

	case "preview":
		img, err := st.Get(args[0])
		if err != nil {
			return err
		}
		if opts.Preview == nil {
			return ErrNoPreview
		}
		log.Debug("previewing image", "name", args[0], "width", img.Width(), "height", img.Height())
		return opts.Preview(ctx, img)

	case "list":
		for _, name := range st.Names() {
			img, err := st.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(opts.out(), "%s\t%dx%d max %d\n", name, img.Width(), img.Height(), img.MaxValue())
		}
		return nil

	case "help":
		_, err := io.WriteString(opts.out(), Usage())
		return err
	}

	// Registered in Commands but not handled above.
	return fmt.Errorf("%w: %q has no implementation", ErrUnknownCommand, verb)
}

// transform reads src, applies fn and stores the result under dest.
func transform(st *store.Store, src, dest string, fn func(*raster.Image) (*raster.Image, error)) error {
	img, err := st.Get(src)
	if err != nil {
		return err
	}
	out, err := fn(img)
	if err != nil {
		return err
	}
	return st.Put(dest, out)
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// parsePercent accepts a whole number with an optional trailing '%', so
// "50" and "50%" are equivalent. Range checks belong to the operation.
func parsePercent(s string) (int, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid percent value %q", s)
	}
	return n, nil
}

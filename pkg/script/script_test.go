package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akale22/Image-Manipulator/pkg/codec"
	"github.com/akale22/Image-Manipulator/pkg/logger"
	"github.com/akale22/Image-Manipulator/pkg/raster"
	"github.com/akale22/Image-Manipulator/pkg/store"
)

func quietContext() context.Context {
	return logger.SetContext(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// writePPM writes a 2x2 image: red, green on the top row and blue, grey below.
func writePPM(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "in.ppm")
	src := "P3\n2 2\n255\n200 0 0  0 200 0\n0 0 200  100 100 100\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	in := writePPM(t, dir)
	out := filepath.Join(dir, "out.ppm")
	script := strings.Join([]string{
		"# brighten and mirror",
		"load " + in + " img",
		"",
		"brighten 10 img bright",
		"horizontal-flip bright flipped",
		"save " + out + " flipped",
		"q",
		"save " + filepath.Join(dir, "never.ppm") + " img",
	}, "\n")

	var buf bytes.Buffer
	interp := New(store.New(), &buf, Options{})
	if err := interp.Run(quietContext(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}
	want := welcomeMessage + "\n" + quitMessage + "\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
	if _, err := os.Stat(filepath.Join(dir, "never.ppm")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("commands after quit must not run, stat err = %v", err)
	}

	got, err := codec.Load(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if p := got.PixelAt(0, 0); p != raster.MustPixel(10, 210, 10) {
		t.Fatalf("pixel (0, 0) = %v, want the brightened green", p)
	}
	if p := got.PixelAt(0, 1); p != raster.MustPixel(110, 110, 110) {
		t.Fatalf("pixel (0, 1) = %v, want the brightened grey", p)
	}
	// The source image stays untouched in the store.
	orig, err := interp.Store().Get("img")
	if err != nil {
		t.Fatal(err)
	}
	if p := orig.PixelAt(0, 0); p != raster.MustPixel(200, 0, 0) {
		t.Fatalf("source pixel changed to %v", p)
	}
}

func TestRunReportsInvalidLines(t *testing.T) {
	script := strings.Join([]string{
		"# only failures here",
		"foo a b",
		"load",
		"brighten x img out",
		"brighten -5 img out",
		"blur missing out   # trailing comment",
		"downsize 100 0 img out",
	}, "\n")
	var buf bytes.Buffer
	if err := New(store.New(), &buf, Options{}).Run(quietContext(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		welcomeMessage,
		invalidPrefix + "foo a b",
		invalidPrefix + "load",
		invalidPrefix + "brighten x img out",
		invalidPrefix + "brighten -5 img out",
		invalidPrefix + "blur missing out",
		invalidPrefix + "downsize 100 0 img out",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestRunQuitIsCaseInsensitive(t *testing.T) {
	for _, word := range []string{"q", "Q", "quit", "QuIt"} {
		var buf bytes.Buffer
		if err := New(store.New(), &buf, Options{}).Run(quietContext(), strings.NewReader(word+"\nfoo\n")); err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(buf.String(), quitMessage+"\n") {
			t.Fatalf("%q: output = %q", word, buf.String())
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(quietContext())
	cancel()
	var buf bytes.Buffer
	err := New(store.New(), &buf, Options{}).Run(ctx, strings.NewReader("list\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRunOutputFailure(t *testing.T) {
	if err := New(store.New(), failingWriter{}, Options{}).Run(quietContext(), strings.NewReader("")); err == nil {
		t.Fatalf("expected an error when output cannot be written")
	}
}

func TestApplyErrors(t *testing.T) {
	ctx := quietContext()
	st := store.New()
	if err := Apply(ctx, st, "rotate", []string{"90"}, Options{}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("unknown verb error = %v", err)
	}
	if err := Apply(ctx, st, "blur", []string{"a"}, Options{}); !errors.Is(err, ErrArity) {
		t.Fatalf("arity error = %v", err)
	}
	if err := Apply(ctx, st, "sepia", []string{"a", "b"}, Options{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing source error = %v", err)
	}
	img := raster.MustPixel(1, 2, 3)
	m, err := raster.New(1, 1, 255, [][]raster.Pixel{{img}})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Put("a", m); err != nil {
		t.Fatal(err)
	}
	if err := Apply(ctx, st, "darken", []string{"0", "a", "b"}, Options{}); !errors.Is(err, raster.ErrNonPositiveValue) {
		t.Fatalf("darken 0 error = %v", err)
	}
	if err := Apply(ctx, st, "save", []string{filepath.Join(t.TempDir(), "a.txt"), "a"}, Options{}); !errors.Is(err, codec.ErrUnsupportedFormat) {
		t.Fatalf("save .txt error = %v", err)
	}
}

func TestApplyTransformsStoreResults(t *testing.T) {
	ctx := quietContext()
	st := store.New()
	dir := t.TempDir()
	if err := Apply(ctx, st, "load", []string{writePPM(t, dir), "img"}, Options{}); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"red-component img red",
		"green-component img green",
		"blue-component img blue",
		"value-component img value",
		"intensity-component img intensity",
		"luma-component img luma",
		"vertical-flip img vflip",
		"darken 50 img dark",
		"blur img blurred",
		"sharpen img sharp",
		"greyscale img grey",
		"sepia img sepia",
		"downsize 50% 50 img small",
		"histogram img hist",
	} {
		f := strings.Fields(line)
		if err := Apply(ctx, st, f[0], f[1:], Options{}); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	red, _ := st.Get("red")
	if p := red.PixelAt(0, 0); p != raster.MustPixel(200, 200, 200) {
		t.Fatalf("red-component (0, 0) = %v", p)
	}
	vflip, _ := st.Get("vflip")
	if p := vflip.PixelAt(0, 0); p != raster.MustPixel(0, 0, 200) {
		t.Fatalf("vertical-flip (0, 0) = %v", p)
	}
	small, _ := st.Get("small")
	if small.Width() != 1 || small.Height() != 1 {
		t.Fatalf("downsize result is %dx%d", small.Width(), small.Height())
	}
	hist, _ := st.Get("hist")
	if hist.Width() != raster.DefaultHistogramWidth || hist.Height() != raster.DefaultHistogramHeight {
		t.Fatalf("histogram chart is %dx%d", hist.Width(), hist.Height())
	}
}

func TestApplyPreviewListHelp(t *testing.T) {
	ctx := quietContext()
	st := store.New()
	m, err := raster.New(2, 1, 255, [][]raster.Pixel{{raster.MustPixel(0, 0, 0)}, {raster.MustPixel(9, 9, 9)}})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Put("pic", m); err != nil {
		t.Fatal(err)
	}

	if err := Apply(ctx, st, "preview", []string{"pic"}, Options{}); !errors.Is(err, ErrNoPreview) {
		t.Fatalf("preview without previewer error = %v", err)
	}
	var shown *raster.Image
	opts := Options{Preview: func(_ context.Context, img *raster.Image) error {
		shown = img
		return nil
	}}
	if err := Apply(ctx, st, "preview", []string{"pic"}, opts); err != nil {
		t.Fatal(err)
	}
	if shown != m {
		t.Fatalf("previewer got %v, want the stored image", shown)
	}

	var buf bytes.Buffer
	if err := Apply(ctx, st, "list", nil, Options{Out: &buf}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "pic\t2x1 max 255\n" {
		t.Fatalf("list output = %q", buf.String())
	}

	buf.Reset()
	if err := Apply(ctx, st, "help", nil, Options{Out: &buf}); err != nil {
		t.Fatal(err)
	}
	for _, c := range Commands {
		if !strings.Contains(buf.String(), c.Usage) {
			t.Fatalf("help output lacks %q", c.Usage)
		}
	}
}

func TestCommandsRegistry(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Commands {
		if seen[c.Name] {
			t.Fatalf("duplicate command %q", c.Name)
		}
		seen[c.Name] = true
		if !strings.HasPrefix(c.Usage, c.Name) {
			t.Fatalf("%s: usage %q does not start with the verb", c.Name, c.Usage)
		}
		if got := len(strings.Fields(c.Usage)) - 1; got != len(c.Args) {
			t.Fatalf("%s: usage lists %d args, Args has %d", c.Name, got, len(c.Args))
		}
	}
	if _, ok := Lookup("sepia"); !ok {
		t.Fatalf("sepia missing from Lookup")
	}
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names not sorted: %v", names)
		}
	}
}

func TestTokens(t *testing.T) {
	if got := tokens("  blur a b #c d"); strings.Join(got, ",") != "blur,a,b" {
		t.Fatalf("tokens = %v", got)
	}
	if got := tokens("#load x y"); len(got) != 0 {
		t.Fatalf("comment line tokens = %v", got)
	}
}

func TestParsePercent(t *testing.T) {
	for in, want := range map[string]int{"50": 50, "50%": 50, " 0% ": 0} {
		got, err := parsePercent(in)
		if err != nil || got != want {
			t.Fatalf("parsePercent(%q) = %d, %v", in, got, err)
		}
	}
	if _, err := parsePercent("half"); err == nil {
		t.Fatalf("expected error for non-numeric percent")
	}
}

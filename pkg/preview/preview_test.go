package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/akale22/Image-Manipulator/pkg/raster"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func noTools(string) (string, error) { return "", exec.ErrNotFound }

func solid(t *testing.T, w, h int) *raster.Image {
	t.Helper()
	grid := make([][]raster.Pixel, w)
	for x := range grid {
		grid[x] = make([]raster.Pixel, h)
		for y := range grid[x] {
			grid[x][y] = raster.MustPixel(x%256, y%256, 128)
		}
	}
	img, err := raster.New(w, h, 255, grid)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// noisy fills an image from a linear congruential generator so PNG cannot
// compress it much.
func noisy(t *testing.T, w, h int) *raster.Image {
	t.Helper()
	seed := uint32(1)
	next := func() int {
		seed = seed*1664525 + 1013904223
		return int(seed >> 24)
	}
	grid := make([][]raster.Pixel, w)
	for x := range grid {
		grid[x] = make([]raster.Pixel, h)
		for y := range grid[x] {
			grid[x][y] = raster.MustPixel(next(), next(), next())
		}
	}
	img, err := raster.New(w, h, 255, grid)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestComputeSize(t *testing.T) {
	tests := []struct {
		w, h       int
		cols, rows int
	}{
		{2, 2, minCols, minRows},
		{320, 160, 40, 10},
		{6400, 640, maxCols, 4},
		{100, 10000, minCols, maxRows},
	}
	for _, tt := range tests {
		got := ComputeSize(tt.w, tt.h)
		if got.Cols != tt.cols || got.Rows != tt.rows {
			t.Fatalf("ComputeSize(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, got.Cols, got.Rows, tt.cols, tt.rows)
		}
		if got.PixelWidth != got.Cols*cellWidth || got.PixelHeight != got.Rows*cellHeight {
			t.Fatalf("pixel size %dx%d does not match cells", got.PixelWidth, got.PixelHeight)
		}
	}
}

func TestShowInline(t *testing.T) {
	var out bytes.Buffer
	opts := Options{
		Out:      &out,
		Getenv:   envFrom(map[string]string{"TERM_PROGRAM": "WezTerm", "TERM": "xterm-256color"}),
		LookPath: noTools,
	}
	if err := Show(context.Background(), solid(t, 4, 4), opts); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "\x1b]1337;File=name=preview.png;inline=1;") {
		t.Fatalf("missing inline sequence: %q", s)
	}
	payload := s[strings.Index(s, ":")+1 : strings.Index(s, "\a")]
	png, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("payload is not a PNG: %x", png[:8])
	}
}

func TestShowKittyChunks(t *testing.T) {
	var out bytes.Buffer
	opts := Options{
		Backend:  "kitty",
		Out:      &out,
		Getenv:   envFrom(nil),
		LookPath: noTools,
	}
	// Large enough that the PNG needs several 4096-byte chunks.
	if err := Show(context.Background(), noisy(t, 200, 200), opts); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "\x1b_Ga=T,f=100,t=d,q=2,") {
		t.Fatalf("first chunk header = %q", s[:min(len(s), 40)])
	}
	if !strings.Contains(s, "\x1b_Gm=1;") && !strings.Contains(s, ",m=1;") {
		t.Fatalf("expected a continuation marker")
	}
	if !strings.Contains(s, "\x1b_Gm=0;") {
		t.Fatalf("expected a final chunk")
	}
}

func TestShowNoBackend(t *testing.T) {
	opts := Options{
		Backend:  "sixel",
		Out:      &bytes.Buffer{},
		Getenv:   envFrom(map[string]string{"TERM": "dumb"}),
		LookPath: noTools,
	}
	err := Show(context.Background(), solid(t, 2, 2), opts)
	if !errors.Is(err, ErrNoBackend) || !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("Show error = %v, want ErrNoBackend wrapping exec.ErrNotFound", err)
	}

	opts.Backend = ""
	if Supported(opts) {
		t.Fatalf("Supported should be false without any backend")
	}
	if err := Show(context.Background(), solid(t, 2, 2), opts); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("Show error = %v, want ErrNoBackend", err)
	}
}

func TestCandidates(t *testing.T) {
	s := &session{ctx: context.Background(), opts: Options{
		Backend:  "iTerm",
		Getenv:   envFrom(map[string]string{"KITTY_WINDOW_ID": "1", "TERM_PROGRAM": "iTerm.app"}),
		LookPath: func(string) (string, error) { return "/usr/bin/chafa", nil },
	}.withDefaults()}
	got := strings.Join(s.candidates(), ",")
	if got != "inline,kitty,chafa" {
		t.Fatalf("candidates = %s", got)
	}
}

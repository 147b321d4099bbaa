// Package preview draws images inline in a terminal.
//
// Backends, in default detection order:
//   - inline: iTerm2 OSC 1337 file sequence (iTerm2, WezTerm, Warp, VSCode, ...)
//   - kitty: kitty graphics protocol, chunked base64 inside ESC _G ... ESC \
//   - sixel: piped through an external img2sixel
//   - chafa: piped through an external chafa, works on most terminals
//
// Options.Backend forces one backend first; detection still runs if it fails.
package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/akale22/Image-Manipulator/pkg/codec"
	"github.com/akale22/Image-Manipulator/pkg/logger"
	"github.com/akale22/Image-Manipulator/pkg/raster"
)

// ErrNoBackend is returned when no terminal graphics backend is usable.
var ErrNoBackend = errors.New("no preview backend available")

// Options configures Show. Zero values mean: detect the backend, write to
// os.Stdout, read the process environment and resolve tools on PATH.
type Options struct {
	Backend string // "kitty", "inline", "sixel" or "chafa"
	Debug   bool
	Out     io.Writer

	Getenv   func(string) string
	LookPath func(string) (string, error)
}

func (o Options) withDefaults() Options {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.LookPath == nil {
		o.LookPath = exec.LookPath
	}
	o.Backend = strings.ToLower(strings.TrimSpace(o.Backend))
	return o
}

// Size is a target placement in terminal character cells.
type Size struct {
	Cols        int
	Rows        int
	PixelWidth  int // Cols * cell width
	PixelHeight int // Rows * cell height
}

const (
	cellWidth  = 8
	cellHeight = 16
	minCols    = 6
	minRows    = 3
	maxCols    = 80
	maxRows    = 40
)

// ComputeSize fits a width x height image into at most maxCols x maxRows
// cells, keeping the aspect ratio and never scaling up.
func ComputeSize(width, height int) Size {
	scale := math.Min(1, math.Min(
		float64(maxCols*cellWidth)/float64(width),
		float64(maxRows*cellHeight)/float64(height)))
	cols := int(math.Round(math.Round(float64(width)*scale) / cellWidth))
	rows := int(math.Round(math.Round(float64(height)*scale) / cellHeight))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return Size{Cols: cols, Rows: rows, PixelWidth: cols * cellWidth, PixelHeight: rows * cellHeight}
}

type sender func(s *session, blob []byte) error

var senders = map[string]sender{
	"kitty":  (*session).sendKitty,
	"inline": (*session).sendInline,
	"sixel":  (*session).sendSixel,
	"chafa":  (*session).sendChafa,
}

// Backend aliases accepted in Options.Backend.
var aliases = map[string]string{
	"iterm":   "inline",
	"wezterm": "inline",
}

type session struct {
	ctx  context.Context
	opts Options
	size Size
}

func (s *session) debugf(format string, args ...any) {
	if s.opts.Debug {
		logger.For(s.ctx).Info("preview: " + fmt.Sprintf(format, args...))
	}
}

// Show encodes img as PNG and sends it to the terminal.
func Show(ctx context.Context, img *raster.Image, opts Options) error {
	if img == nil {
		return errors.New("preview: nil image")
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, img, codec.PNG, codec.Options{}); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	s := &session{ctx: ctx, opts: opts.withDefaults(), size: ComputeSize(img.Width(), img.Height())}
	return s.send(buf.Bytes())
}

// Supported reports whether any backend is likely to work.
func Supported(opts Options) bool {
	s := &session{ctx: context.Background(), opts: opts.withDefaults()}
	return len(s.candidates()) > 0
}

func (s *session) send(blob []byte) error {
	var errs []error
	for _, name := range s.candidates() {
		s.debugf("trying %s backend (%d bytes, %dx%d cells)", name, len(blob), s.size.Cols, s.size.Rows)
		err := senders[name](s, blob)
		if err == nil {
			return nil
		}
		s.debugf("%s backend failed: %v", name, err)
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	if len(errs) == 0 {
		return ErrNoBackend
	}
	return fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

// candidates lists backends to try: the forced one first, then detected ones.
func (s *session) candidates() []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	if b := s.opts.Backend; b != "" {
		if a, ok := aliases[b]; ok {
			b = a
		}
		if _, ok := senders[b]; ok {
			add(b)
		} else {
			s.debugf("unknown backend %q", b)
		}
	}
	if s.isInlineCapable() {
		add("inline")
	}
	if s.isKitty() {
		add("kitty")
	}
	if s.isSixelCapable() {
		add("sixel")
	}
	if s.hasChafa() {
		add("chafa")
	}
	return out
}

func (s *session) isKitty() bool {
	env := s.opts.Getenv
	if env("KITTY_WINDOW_ID") != "" || env("KONSOLE_VERSION") != "" {
		return true
	}
	term := strings.ToLower(env("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func (s *session) isInlineCapable() bool {
	env := s.opts.Getenv
	switch env("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return true
	}
	if env("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(env("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "warp") || strings.Contains(term, "tabby")
}

func (s *session) isSixelCapable() bool {
	env := s.opts.Getenv
	if env("SIXEL_PREVIEW") == "1" || env("WT_SESSION") != "" {
		return true
	}
	term := strings.ToLower(env("TERM"))
	return strings.Contains(term, "foot") || strings.Contains(term, "mlterm")
}

func (s *session) hasChafa() bool {
	if s.opts.Getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := s.opts.LookPath("chafa")
	return err == nil
}

// trailingNewlines keeps the next prompt from overlapping the image.
func trailingNewlines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

func (s *session) finish(rows int) error {
	_, err := io.WriteString(s.opts.Out, strings.Repeat("\n", trailingNewlines(rows)))
	return err
}

// sendKitty transmits the PNG in chunks of at most 4096 base64 bytes. The
// first chunk carries the placement; q=2 suppresses terminal replies.
func (s *session) sendKitty(blob []byte) error {
	const chunkSize = 4096
	enc := base64.StdEncoding.EncodeToString(blob)
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", s.size.Cols, s.size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(s.opts.Out, seq); err != nil {
			return err
		}
	}
	return s.finish(s.size.Rows)
}

func (s *session) sendInline(blob []byte) error {
	seq := fmt.Sprintf("\x1b]1337;File=name=preview.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a",
		len(blob), s.size.PixelWidth, s.size.PixelHeight, base64.StdEncoding.EncodeToString(blob))
	if _, err := io.WriteString(s.opts.Out, seq); err != nil {
		return err
	}
	return s.finish(0)
}

func (s *session) sendSixel(blob []byte) error {
	path, err := s.opts.LookPath("img2sixel")
	if err != nil {
		return err
	}
	if err := s.pipe(path, blob, "-"); err != nil {
		return err
	}
	return s.finish(0)
}

func (s *session) sendChafa(blob []byte) error {
	path, err := s.opts.LookPath("chafa")
	if err != nil {
		return err
	}
	fill, symbols := "block", "block"
	if v := s.opts.Getenv("CHAFA_FILL"); v != "" {
		fill = v
	}
	if v := s.opts.Getenv("CHAFA_SYMBOLS"); v != "" {
		symbols = v
	}
	size := fmt.Sprintf("%dx%d", s.size.Cols, s.size.Rows)
	if err := s.pipe(path, blob, "--fill="+fill, "--symbols="+symbols, "-s", size, "-"); err != nil {
		return err
	}
	return s.finish(s.size.Rows)
}

func (s *session) pipe(path string, blob []byte, args ...string) error {
	cmd := exec.CommandContext(s.ctx, path, args...)
	cmd.Stdin = bytes.NewReader(blob)
	cmd.Stdout = s.opts.Out
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", path, err, msg)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

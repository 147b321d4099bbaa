package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.yhsif.com/immutable"

	"github.com/akale22/Image-Manipulator/pkg/logger"
	"github.com/akale22/Image-Manipulator/pkg/store"
)

const (
	welcomeMessage = "Welcome to the image editor application!"
	quitMessage    = "Application quit!"
	invalidPrefix  = "Invalid command sequence: "
)

// Compared after lower-casing.
var quitWords = immutable.SetLiteral("q", "quit")

// Interpreter runs line-oriented scripts against a shared image store.
type Interpreter struct {
	store *store.Store
	out   io.Writer
	opts  Options
}

// New returns an Interpreter writing messages to out. When opts.Out is nil,
// list and help output also goes to out.
func New(st *store.Store, out io.Writer, opts Options) *Interpreter {
	if opts.Out == nil {
		opts.Out = out
	}
	return &Interpreter{store: st, out: out, opts: opts}
}

// Store returns the store the interpreter operates on.
func (in *Interpreter) Store() *store.Store { return in.store }

// Run executes commands from r until it is exhausted, a quit verb is read or
// ctx is done. A failing line is reported on the output and does not stop the
// run; only output and read failures or cancellation are returned.
func (in *Interpreter) Run(ctx context.Context, r io.Reader) error {
	log := logger.For(ctx).With("run", runID())
	ctx = logger.SetContext(ctx, log)

	if err := in.println(welcomeMessage); err != nil {
		return err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		fields := tokens(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if quitWords.Contains(strings.ToLower(fields[0])) {
			log.Debug("quit requested", "line", lineNo)
			return in.println(quitMessage)
		}
		if err := Apply(ctx, in.store, fields[0], fields[1:], in.opts); err != nil {
			log.Warn("command failed", "line", lineNo, "command", fields[0], "err", err)
			if err := in.println(invalidPrefix + strings.Join(fields, " ")); err != nil {
				return err
			}
			continue
		}
		log.Debug("command done", "line", lineNo, "command", fields[0])
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return nil
}

func (in *Interpreter) println(s string) error {
	if _, err := fmt.Fprintln(in.out, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// tokens splits a line on whitespace and drops everything from the first
// token starting with '#'.
func tokens(line string) []string {
	fields := strings.Fields(line)
	for i, f := range fields {
		if strings.HasPrefix(f, "#") {
			return fields[:i]
		}
	}
	return fields
}

func runID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// Package cli wires the command line: kong commands, the interactive text
// mode and self update.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/akale22/Image-Manipulator/pkg/codec"
	"github.com/akale22/Image-Manipulator/pkg/config"
	"github.com/akale22/Image-Manipulator/pkg/logger"
	"github.com/akale22/Image-Manipulator/pkg/preview"
	"github.com/akale22/Image-Manipulator/pkg/raster"
	"github.com/akale22/Image-Manipulator/pkg/script"
	"github.com/akale22/Image-Manipulator/pkg/store"
)

// Version is set at build time with -ldflags "-X .../pkg/cli.Version=1.2.3".
var Version = "0.0.0-dev"

// Globals are flags accepted by every command.
type Globals struct {
	EnvFile   []string `help:"Load settings from these .env files instead of ./.env." name:"env-file"`
	LogLevel  string   `help:"Log level (debug, info, warn, error). Overrides ${env_log_level}." name:"log-level"`
	LogFormat string   `help:"Log format (text, json). Overrides ${env_log_format}." name:"log-format"`
}

// CLI is the root command.
type CLI struct {
	Globals

	Text    TextCmd    `cmd:"" default:"1" help:"Read commands interactively from standard input."`
	Script  ScriptCmd  `cmd:"" help:"Run the commands in a script file."`
	Version VersionCmd `cmd:"" help:"Print the version and exit."`
	Update  UpdateCmd  `cmd:"" help:"Check for a newer release and install it."`
}

// Vars are the interpolation variables used in CLI help tags.
var Vars = kong.Vars{
	"env_log_level":  config.EnvLogLevel,
	"env_log_format": config.EnvLogFormat,
}

// App is what command Run methods receive once configuration is resolved.
type App struct {
	Config config.Config
	Stdin  io.Reader
	Stdout io.Writer
}

// Setup resolves configuration from the environment and the global flags and
// returns a context carrying the configured logger.
func (g *Globals) Setup(ctx context.Context, stderr io.Writer) (context.Context, config.Config, error) {
	cfg, err := config.Load(g.EnvFile...)
	if err != nil {
		return ctx, cfg, err
	}
	if g.LogLevel != "" {
		if cfg.LogLevel, err = logger.ParseLevel(g.LogLevel); err != nil {
			return ctx, cfg, fmt.Errorf("--log-level: %w", err)
		}
	}
	if g.LogFormat != "" {
		cfg.LogFormat = g.LogFormat
	}
	log, err := logger.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return ctx, cfg, err
	}
	return logger.SetContext(ctx, log), cfg, nil
}

func (a *App) interpreter() *script.Interpreter {
	opts := script.Options{
		Codec: codec.Options{JPEGQuality: a.Config.JPEGQuality},
		Preview: func(ctx context.Context, img *raster.Image) error {
			return preview.Show(ctx, img, preview.Options{
				Backend: a.Config.PreviewBackend,
				Debug:   a.Config.PreviewDebug,
				Out:     a.Stdout,
			})
		},
	}
	return script.New(store.New(), a.Stdout, opts)
}

// TextCmd runs the interpreter over standard input.
type TextCmd struct{}

func (c *TextCmd) Run(ctx context.Context, app *App) error {
	return app.interpreter().Run(ctx, app.Stdin)
}

// ScriptCmd runs the interpreter over a file.
type ScriptCmd struct {
	File string `arg:"" type:"existingfile" help:"Script with one command per line."`
}

func (c *ScriptCmd) Run(ctx context.Context, app *App) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()
	logger.For(ctx).Debug("running script", "file", c.File)
	return app.interpreter().Run(ctx, f)
}

type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	_, err := fmt.Fprintf(app.Stdout, "imgmanip %s\n", Version)
	return err
}

// UpdateCmd checks GitHub for a newer release.
type UpdateCmd struct {
	Yes bool `short:"y" help:"Install without asking."`
}

func (c *UpdateCmd) Run(ctx context.Context, app *App) error {
	u := &Updater{
		Repo:    app.Config.UpdateRepo,
		Current: Version,
		Yes:     c.Yes,
		In:      app.Stdin,
		Out:     app.Stdout,
	}
	return u.CheckForUpdates(ctx)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/akale22/Image-Manipulator/pkg/cli"
)

func main() {
	var root cli.CLI
	kctx := kong.Parse(&root,
		kong.Name("imgmanip"),
		kong.Description("Load, transform and save raster images with a small command language."),
		kong.UsageOnError(),
		cli.Vars,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cfg, err := root.Setup(ctx, os.Stderr)
	kctx.FatalIfErrorf(err)

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(&cli.App{Config: cfg, Stdin: os.Stdin, Stdout: os.Stdout})
	kctx.FatalIfErrorf(err)
}

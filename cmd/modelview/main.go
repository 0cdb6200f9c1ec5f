// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Command modelview loads a model and an environment
// into a headless viewer and reports what it would
// display.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

type options struct {
	model      string
	env        string
	preset     string
	presets    string
	blur       float32
	skybox     bool
	width      int
	height     int
	pixelRatio float32
	config     string
	preview    string
	watch      bool

	vv, v, q bool
}

// levelFromFlags maps verbosity flags to a log level.
// Flags are evaluated in order: vv, v, then q.
func levelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func newCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "modelview",
		Short: "Load a 3D model and an environment into a headless viewer",
		Long: `modelview decodes a glTF/GLB model and an environment image,
normalizes the model to the configured size and prints its materials,
bounds and the resulting draw list. The environment background can be
written as a WebP preview.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: levelFromFlags(opts.vv, opts.v, opts.q),
			}))
			return run(cmd.Context(), cmd.OutOrStdout(), log, &opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.model, "model", "m", "", "path to a glTF/GLB model")
	f.StringVarP(&opts.env, "env", "e", "", "path to an environment image (HDR, PNG, JPEG, WebP, BMP or TGA)")
	f.StringVar(&opts.preset, "preset", "", "environment URL resolved against --presets")
	f.StringVar(&opts.presets, "presets", ".", "directory of preset environments")
	f.Float32Var(&opts.blur, "blur", 0, "background blurriness in [0, 1]")
	f.BoolVar(&opts.skybox, "skybox", false, "display the environment as background")
	f.IntVar(&opts.width, "width", 1280, "surface width in pixels")
	f.IntVar(&opts.height, "height", 720, "surface height in pixels")
	f.Float32Var(&opts.pixelRatio, "pixel-ratio", 1, "device pixels per surface pixel")
	f.StringVarP(&opts.config, "config", "c", "", "path to a TOML configuration file")
	f.StringVar(&opts.preview, "preview", "", "write the background as a WebP image to this path")
	f.BoolVarP(&opts.watch, "watch", "w", false, "reload the model when its file changes")
	f.BoolVar(&opts.vv, "vv", false, "log debug messages")
	f.BoolVarP(&opts.v, "verbose", "v", false, "log informational messages")
	f.BoolVarP(&opts.q, "quiet", "q", false, "log errors only")
	cmd.MarkFlagsMutuallyExclusive("env", "preset")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "modelview:", err)
		stop()
		os.Exit(1)
	}
}

// projtool computes projector rig geometry, renders previews and serves
// projector sessions to a host application.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/projector-rig/internal/config"
	"github.com/Faultbox/projector-rig/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "resolutions", "res":
		err = cmdResolutions(args)
	case "info":
		err = cmdInfo(args)
	case "outline":
		err = cmdOutline(args)
	case "preview":
		err = cmdPreview(args)
	case "watch":
		err = cmdWatch(args)
	case "serve":
		err = cmdServe(args)
	case "send":
		err = cmdSend(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`projtool - projector rig geometry tool

Usage:
  projtool <command> [options]

Commands:
  resolutions                     List the standard resolutions
  info [preset]                   Show derived lens, texture and outline values
  outline [preset] [-location x,y,z]
                                  Print the 17-point frustum outline
  preview [preset] [-o out.webp]  Render what the projector casts at its focus distance
  watch <preset>                  Recompute whenever the preset file changes
  serve [-preset file]            Serve projector sessions over WebSocket
  send <op> [options]             Send one request to a running bridge

Presets are YAML (.yaml, .yml) or TOML (.toml) files. Without a preset the
configured defaults are used.

Examples:
  projtool info room.yaml
  projtool outline -lines room.toml
  projtool preview -o room.webp -size 800 room.yaml
  projtool serve -listen 127.0.0.1:7341 -preset room.yaml
  projtool send -id p1 -field throw_ratio -value 1.5 change`)
}

// setup parses a command's flags, loads config and starts logging.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	opts := logger.Options{Level: cfg.Logging.Level, Console: true, JSON: cfg.Logging.JSON}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(opts); err != nil {
		return nil, fmt.Errorf("starting logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, nil
}

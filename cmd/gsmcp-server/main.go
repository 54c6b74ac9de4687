// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// gsmcp-server is the google-search-mcp service: one MCP tool,
// google.search, backed by the Google Programmable Search JSON API.
// It serves MCP over HTTP (alongside a health endpoint) or over
// stdin/stdout with --stdio.
//
// Usage:
//
//	gsmcp-server <module:attribute> [--host HOST] [--port PORT] [--stdio]
//
// The application reference names the application to run; server:app
// is the only registered reference and what gsmcp-launch passes.
// Configuration comes from the environment: GOOGLE_API_KEY and
// GOOGLE_CSE_ID are required. A ./.env file is loaded when present,
// without overriding variables already set.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/gsmcp-foundation/gsmcp/lib/config"
	"github.com/gsmcp-foundation/gsmcp/lib/dotenv"
	"github.com/gsmcp-foundation/gsmcp/lib/process"
	"github.com/gsmcp-foundation/gsmcp/lib/service"
	"github.com/gsmcp-foundation/gsmcp/lib/version"
	"github.com/gsmcp-foundation/gsmcp/lib/webapp"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// options are the parsed command line.
type options struct {
	host        string
	port        int
	stdio       bool
	showVersion bool

	// entryRef is the positional application reference, empty when
	// none was given.
	entryRef string
}

// parseArgs parses the command line. Flags and the positional
// application reference may be interleaved: the launcher passes the
// positional first (gsmcp-server server:app --host 0.0.0.0 --port 8000).
func parseArgs(args []string) (options, error) {
	var opts options

	flags := pflag.NewFlagSet("gsmcp-server", pflag.ContinueOnError)
	flags.StringVar(&opts.host, "host", "127.0.0.1", "TCP listen host for the HTTP transport")
	flags.IntVar(&opts.port, "port", 8000, "TCP listen port for the HTTP transport")
	flags.BoolVar(&opts.stdio, "stdio", false, "serve MCP on stdin/stdout instead of HTTP")
	flags.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: gsmcp-server <module:attribute> [flags]\n\nflags:\n%s", flags.FlagUsages())
	}

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}

	switch flags.NArg() {
	case 0:
	case 1:
		opts.entryRef = flags.Arg(0)
	default:
		return options{}, fmt.Errorf("unexpected arguments: %v", flags.Args()[1:])
	}

	return opts, nil
}

func run() error {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if opts.showVersion {
		version.Print("gsmcp-server")
		return nil
	}

	if opts.entryRef == "" {
		return fmt.Errorf("an application reference is required (the launcher passes %q)", "server:app")
	}

	// Development credentials come from ./.env; the deployment
	// environment provides them in production. Variables already set
	// are never overridden.
	if err := dotenv.Load(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	searchConfig, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app, err := webapp.Resolve(opts.entryRef, webapp.Config{
		Search: searchConfig,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.stdio {
		logger.Info("serving mcp over stdio", "server", webapp.ServerName, "version", version.Short())
		return app.MCP().Serve(ctx)
	}

	server := service.NewHTTPServer(service.HTTPServerConfig{
		Address: net.JoinHostPort(opts.host, strconv.Itoa(opts.port)),
		Handler: app.Handler(),
		Logger:  logger,
	})
	return server.Serve(ctx)
}

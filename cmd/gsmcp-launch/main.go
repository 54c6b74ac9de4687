// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// gsmcp-launch starts the search server, activating the project-local
// runtime environment when one exists.
//
// Usage:
//
//	gsmcp-launch
//
// The launcher checks for a .venv directory in the working directory.
// When present, its bin directory is prepended to PATH before the
// server executable is resolved, so an environment-local installation
// wins over a system-wide one. The launcher then replaces itself with
//
//	gsmcp-server server:app --host 0.0.0.0 --port 8000
//
// so termination signals reach the server directly and the launcher's
// exit status is the server's.
package main

import (
	"log/slog"
	"os"

	"github.com/gsmcp-foundation/gsmcp/lib/launch"
	"github.com/gsmcp-foundation/gsmcp/lib/process"
	"github.com/gsmcp-foundation/gsmcp/lib/venv"
	"github.com/gsmcp-foundation/gsmcp/lib/version"
)

// The launch contract is fixed: no flags, no environment indirection.
// Deployments that need a different address run gsmcp-server directly.
const (
	envDir        = ".venv"
	serverCommand = "gsmcp-server"
	entryPoint    = "server:app"
	bindHost      = "0.0.0.0"
	bindPort      = 8000
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version":
			version.Print("gsmcp-launch")
			return
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := run(logger, launch.Run); err != nil {
		process.Fatal(err)
	}
}

// run performs the bootstrap sequence: detect the runtime environment,
// activate it when present, and hand the process over to the server.
// doLaunch is injected so tests can observe the launch instead of
// having the test process replaced.
func run(logger *slog.Logger, doLaunch func(launch.Spec) error) error {
	if env, ok := venv.Detect(envDir); ok {
		// Activation is best-effort: a broken environment is worth a
		// warning, but the server may still resolve through the
		// system path, so the launch always proceeds.
		if err := env.Verify(); err != nil {
			logger.Warn("runtime environment looks incomplete, activating anyway", "error", err)
		}
		if err := env.Overrides(os.Getenv("PATH")).Apply(); err != nil {
			logger.Warn("environment activation failed, launching with ambient environment", "error", err)
		} else {
			logger.Info("runtime environment activated", "root", env.Root)
		}
	}

	return doLaunch(launch.Spec{
		Command: serverCommand,
		Entry:   entryPoint,
		Host:    bindHost,
		Port:    bindPort,
	})
}

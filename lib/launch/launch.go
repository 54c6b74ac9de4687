// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch hands the current process over to the search server.
//
// On Unix the handoff uses exec(): the server replaces the launcher's
// process image, so signal delivery, stdio, and the exit code all
// belong to the server with no intermediary. On Windows, which has no
// exec(), the server runs as a child with inherited stdio and its exit
// status is mirrored through [ExitError].
package launch

import (
	"fmt"
	"strconv"
)

// Spec describes the server process to hand off to.
type Spec struct {
	// Command is the server executable name, resolved against the
	// launcher's PATH at handoff time.
	Command string

	// Entry is the application reference passed as the first
	// argument, e.g. "server:app".
	Entry string

	// Host and Port are the bind address, passed via --host and
	// --port.
	Host string
	Port int

	// Env is the environment for the server process. Nil means the
	// launcher's own environment at handoff time.
	Env []string
}

// Argv builds the server's argument vector. argv[0] is the resolved
// binary path; the rest is the entry reference followed by the bind
// flags.
func (s Spec) Argv(binary string) []string {
	return []string{binary, s.Entry, "--host", s.Host, "--port", strconv.Itoa(s.Port)}
}

// ExitError reports a non-zero exit from the supervised server
// process. Only produced on platforms without exec(), where the
// server runs as a child instead of replacing the launcher.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("server exited with code %d", e.Code)
}

// ExitCode returns the server's exit status so the launcher can
// terminate with the same code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package launch

import (
	"fmt"
	"os"
	"os/exec"
)

// Run starts the server as a child process and waits for it to exit.
// Windows has no exec(), so the launcher stays alive as a thin
// supervisor: the child inherits stdin/stdout/stderr, and a non-zero
// child exit surfaces as [ExitError] so the launcher can terminate
// with the same code.
func Run(spec Spec) error {
	binary, err := exec.LookPath(spec.Command)
	if err != nil {
		return fmt.Errorf("server executable %q not found: %w", spec.Command, err)
	}

	argv := spec.Argv(binary)
	child := exec.Command(binary, argv[1:]...)
	child.Env = spec.Env
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	if err := child.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("running %s: %w", binary, err)
	}
	return nil
}

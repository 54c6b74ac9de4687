// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package launch

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// execFunc replaces the current process with the server binary.
// Defaults to syscall.Exec. Tests override this to capture the exec
// call instead of actually replacing the test process.
var execFunc = syscall.Exec

// Run resolves the server executable on PATH and replaces the current
// process with it. On success Run never returns: the server owns the
// process from that point, including signal delivery and the exit
// code. A return always means the server is not running.
//
// Resolution uses the launcher's PATH regardless of Spec.Env, so an
// activated environment must be applied to the process before calling
// Run.
func Run(spec Spec) error {
	binary, err := exec.LookPath(spec.Command)
	if err != nil {
		return fmt.Errorf("server executable %q not found: %w", spec.Command, err)
	}

	env := spec.Env
	if env == nil {
		env = os.Environ()
	}

	execErr := execFunc(binary, spec.Argv(binary), env)

	// If we reach here, exec failed. The process was not replaced.
	return fmt.Errorf("exec %s: %w", binary, execErr)
}

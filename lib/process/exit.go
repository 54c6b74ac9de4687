// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits. This is the standard
// binary entrypoint error handler: use it in main() for errors from
// run() where the structured logger may not be initialized. Errors
// carrying an exit code (see ExitCoder) exit with that code and no
// message, so a mirrored child exit status passes through untouched.
func Fatal(err error) {
	var coder ExitCoder
	if errors.As(err, &coder) {
		os.Exit(coder.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// ExitCoder is implemented by errors that represent a process exit
// status rather than a failure to report.
type ExitCoder interface {
	error
	ExitCode() int
}

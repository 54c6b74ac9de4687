// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import "testing"

func TestSpecArgv(t *testing.T) {
	spec := Spec{
		Command: "gsmcp-server",
		Entry:   "server:app",
		Host:    "0.0.0.0",
		Port:    8000,
	}

	argv := spec.Argv("/opt/bin/gsmcp-server")
	want := []string{"/opt/bin/gsmcp-server", "server:app", "--host", "0.0.0.0", "--port", "8000"}
	if len(argv) != len(want) {
		t.Fatalf("Argv length = %d, want %d: %v", len(argv), len(want), argv)
	}
	for index, wantArg := range want {
		if argv[index] != wantArg {
			t.Errorf("argv[%d] = %q, want %q", index, argv[index], wantArg)
		}
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 3}
	if err.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", err.ExitCode())
	}
	if err.Error() != "server exited with code 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gsmcp-foundation/gsmcp/lib/launch"
)

// captureLaunch returns a launch function that records its spec
// instead of replacing the test process, and a getter that fails the
// test if no launch happened.
func captureLaunch(t *testing.T) (func(launch.Spec) error, func() launch.Spec) {
	t.Helper()

	var (
		called bool
		got    launch.Spec
	)
	doLaunch := func(spec launch.Spec) error {
		called = true
		got = spec
		return nil
	}
	return doLaunch, func() launch.Spec {
		t.Helper()
		if !called {
			t.Fatal("launch was never invoked")
		}
		return got
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// clearEnv unsets key for the duration of the test, restoring any
// prior value afterwards.
func clearEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

// chdir changes the working directory for the duration of the test,
// restoring the previous one afterwards. It stands in for
// testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestRun_LaunchesWithoutEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PATH", "/usr/bin")
	clearEnv(t, "VIRTUAL_ENV")

	doLaunch, launched := captureLaunch(t)
	if err := run(discardLogger(), doLaunch); err != nil {
		t.Fatalf("run: %v", err)
	}

	spec := launched()
	if spec.Command != "gsmcp-server" {
		t.Errorf("command = %q, want gsmcp-server", spec.Command)
	}
	if spec.Entry != "server:app" {
		t.Errorf("entry = %q, want server:app", spec.Entry)
	}
	if spec.Host != "0.0.0.0" {
		t.Errorf("host = %q, want 0.0.0.0", spec.Host)
	}
	if spec.Port != 8000 {
		t.Errorf("port = %d, want 8000", spec.Port)
	}
	if spec.Env != nil {
		t.Errorf("env = %v, want nil (launcher environment)", spec.Env)
	}

	// Without an environment directory the process environment stays
	// untouched.
	if got := os.Getenv("PATH"); got != "/usr/bin" {
		t.Errorf("PATH = %q, want /usr/bin", got)
	}
	if _, ok := os.LookupEnv("VIRTUAL_ENV"); ok {
		t.Error("VIRTUAL_ENV set without an environment directory")
	}
}

func TestRun_ActivatesEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.MkdirAll(filepath.Join(dir, ".venv", "bin"), 0o755); err != nil {
		t.Fatalf("creating environment: %v", err)
	}

	t.Setenv("PATH", "/usr/bin")
	t.Setenv("PYTHONHOME", "/stale/runtime")
	clearEnv(t, "VIRTUAL_ENV")

	doLaunch, launched := captureLaunch(t)
	if err := run(discardLogger(), doLaunch); err != nil {
		t.Fatalf("run: %v", err)
	}
	launched()

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	wantRoot := filepath.Join(cwd, ".venv")

	if got, want := os.Getenv("PATH"), filepath.Join(wantRoot, "bin")+":"+"/usr/bin"; got != want {
		t.Errorf("PATH = %q, want %q", got, want)
	}
	if got := os.Getenv("VIRTUAL_ENV"); got != wantRoot {
		t.Errorf("VIRTUAL_ENV = %q, want %q", got, wantRoot)
	}
	if _, ok := os.LookupEnv("PYTHONHOME"); ok {
		t.Error("PYTHONHOME still set after activation")
	}
}

func TestRun_BrokenEnvironmentStillLaunches(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// An environment directory without bin/ is broken, but must not
	// block the launch.
	if err := os.Mkdir(filepath.Join(dir, ".venv"), 0o755); err != nil {
		t.Fatalf("creating environment: %v", err)
	}
	t.Setenv("PATH", "/usr/bin")

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	doLaunch, launched := captureLaunch(t)
	if err := run(logger, doLaunch); err != nil {
		t.Fatalf("run: %v", err)
	}
	launched()

	if !strings.Contains(logBuf.String(), "incomplete") {
		t.Errorf("log output = %q, want a warning about the incomplete environment", logBuf.String())
	}
}

func TestRun_LaunchErrorPropagates(t *testing.T) {
	chdir(t, t.TempDir())

	launchErr := errors.New("exec format error")
	err := run(discardLogger(), func(launch.Spec) error { return launchErr })
	if !errors.Is(err, launchErr) {
		t.Fatalf("run error = %v, want %v", err, launchErr)
	}
}

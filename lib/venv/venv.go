// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package venv locates a project-local isolated runtime environment
// and computes the environment changes that activate it.
//
// An isolated environment is a directory (conventionally ".venv")
// holding a project-local copy of runtime binaries under bin/.
// Activation means making those binaries resolve ahead of system-wide
// installations: the bin directory is prepended to PATH and the
// environment root is recorded in VIRTUAL_ENV. The decision of what
// to change ([Environment.Overrides]) is separate from the mutation
// itself ([Overrides.Apply]), so each is testable on its own.
package venv

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultSystemPath is the search path used when the process has no
// PATH at all, so activation never produces a PATH with an empty entry.
const defaultSystemPath = "/usr/local/bin:/usr/bin:/bin"

// Environment is a discovered isolated runtime environment.
type Environment struct {
	// Root is the environment directory, absolute when the working
	// directory could be resolved.
	Root string
}

// Detect reports whether dir exists and is a directory. Absence is the
// normal case, not an error: a missing environment simply means the
// launch proceeds with the ambient system environment.
func Detect(dir string) (*Environment, bool) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false
	}

	root := dir
	if abs, err := filepath.Abs(dir); err == nil {
		root = abs
	}
	return &Environment{Root: root}, true
}

// BinDir returns the environment's executable directory.
func (e *Environment) BinDir() string {
	return filepath.Join(e.Root, "bin")
}

// Verify checks that the environment contains an executable directory.
// A failed Verify does not block activation; the caller surfaces it as
// a warning and proceeds, since prepending a nonexistent directory to
// PATH is harmless.
func (e *Environment) Verify() error {
	info, err := os.Stat(e.BinDir())
	if err != nil {
		return fmt.Errorf("environment %s has no bin directory: %w", e.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("environment %s: bin is not a directory", e.Root)
	}
	return nil
}

// Overrides computes the environment changes that activate e, as a
// pure function of the current search path. The bin directory is
// ordered ahead of every existing PATH entry so the environment's
// binaries win resolution, VIRTUAL_ENV marks the active root, and
// PYTHONHOME is cleared (an activation script does the same; a stale
// value would redirect the isolated runtime elsewhere).
func (e *Environment) Overrides(currentPath string) Overrides {
	searchPath := currentPath
	if searchPath == "" {
		searchPath = defaultSystemPath
	}

	return Overrides{
		Set: map[string]string{
			"PATH":        e.BinDir() + ":" + searchPath,
			"VIRTUAL_ENV": e.Root,
		},
		Unset: []string{"PYTHONHOME"},
	}
}

// Overrides is a set of environment variable changes. The zero value
// changes nothing.
type Overrides struct {
	// Set maps variable names to the values activation assigns.
	Set map[string]string

	// Unset lists variables activation removes.
	Unset []string
}

// Apply mutates the current process's environment so that subsequently
// resolved executables and spawned processes observe the overrides.
func (o Overrides) Apply() error {
	for key, value := range o.Set {
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	for _, key := range o.Unset {
		if err := os.Unsetenv(key); err != nil {
			return fmt.Errorf("unsetting %s: %w", key, err)
		}
	}
	return nil
}

// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the HTTP serving lifecycle for the search
// service: TCP listener binding, readiness signaling, and graceful
// shutdown on context cancellation.
//
// The server binary composes this with the application handler in its
// own main() function rather than subclassing a framework. The package
// provides building blocks, not a runtime.
package service

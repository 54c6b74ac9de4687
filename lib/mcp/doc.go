// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp implements a Model Context Protocol server that exposes
// registered tools over JSON-RPC 2.0, either newline-delimited on
// stdin/stdout or as a single-message-per-request HTTP endpoint.
//
// Tools are registered explicitly through [ServerConfig.Tools]. Each
// tool carries a JSON Schema for its arguments (typically generated
// from a parameter struct's tags via [schema.ParamsSchema]); the
// schema is compiled once at server construction and every tools/call
// is validated against it before the handler runs. Validation
// failures are reported in-band as tool errors so the calling model
// can read them and correct the arguments. Tools that declare an
// output schema return structuredContent (the typed result) alongside
// the serialized text content block.
//
// Both transports share one dispatch core, so stdio and HTTP sessions
// behave identically: initialize first, then tools/list and
// tools/call; ping is always available.
//
// This package implements the 2025-11-25 MCP protocol specification.
package mcp

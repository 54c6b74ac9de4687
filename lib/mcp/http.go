// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxRequestBytes bounds the size of a single HTTP-transported MCP
// message, matching the stdio transport's scanner limit.
const maxRequestBytes = 1 << 20

// Handler returns the HTTP transport for the server: one JSON-RPC 2.0
// message per POST request. Notifications are acknowledged with 202
// Accepted and an empty body; every other message gets its JSON-RPC
// response with status 200. Protocol-level failures (parse errors,
// unknown methods, calls before initialize) are JSON-RPC error
// objects in the response body, not HTTP errors.
//
// Session state (the initialize handshake) is shared across requests:
// the server expects one client per process, matching the stdio
// transport's lifecycle.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "mcp endpoint accepts POST only", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondError(w, json.RawMessage("null"), codeParseError, "parse error: "+err.Error())
		return
	}

	if req.JSONRPC != "2.0" {
		if req.isNotification() {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		s.respondError(w, req.ID, codeInvalidRequest, "unsupported JSON-RPC version")
		return
	}

	// Notifications receive no response body.
	if req.isNotification() {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := s.dispatch(r.Context(), json.NewEncoder(w), &req); err != nil {
		// The connection failed mid-response; there is no way to
		// reach this client anymore.
		s.logger.Error("writing mcp response", "error", err)
	}
}

// respondError writes a single JSON-RPC error object as the full HTTP
// response body.
func (s *Server) respondError(w http.ResponseWriter, id json.RawMessage, code int, errorMessage string) {
	w.Header().Set("Content-Type", "application/json")
	if err := writeError(json.NewEncoder(w), id, code, errorMessage); err != nil {
		s.logger.Error("writing mcp error response", "error", err)
	}
}

// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// postMessage sends one JSON-RPC message to the handler and returns
// the raw HTTP response.
func postMessage(t *testing.T, url string, message map[string]any) *http.Response {
	t.Helper()

	data, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	return resp
}

// decodeResponse reads a JSON-RPC response from an HTTP response body.
func decodeResponse(t *testing.T, resp *http.Response) testResponse {
	t.Helper()
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var decoded testResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testTools(t)).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
	if got := resp.Header.Get("Allow"); got != http.MethodPost {
		t.Errorf("Allow = %q, want POST", got)
	}
}

func TestHandler_SessionAcrossRequests(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testTools(t)).Handler())
	defer ts.Close()

	init := initMessages()

	// Initialize.
	resp := postMessage(t, ts.URL, init[0])
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("initialize status = %d, want 200", resp.StatusCode)
	}
	decoded := decodeResponse(t, resp)
	if decoded.Error != nil {
		t.Fatalf("initialize failed: %+v", decoded.Error)
	}
	var initResult initializeResult
	if err := json.Unmarshal(decoded.Result, &initResult); err != nil {
		t.Fatalf("unmarshal initialize result: %v", err)
	}
	if initResult.ProtocolVersion != protocolVersion {
		t.Errorf("protocolVersion = %q, want %q", initResult.ProtocolVersion, protocolVersion)
	}

	// The initialized notification gets acknowledged without a body.
	resp = postMessage(t, ts.URL, init[1])
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("notification status = %d, want 202", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read notification body: %v", err)
	}
	if len(body) != 0 {
		t.Errorf("notification body = %q, want empty", body)
	}

	// The handshake state carries over to the next request.
	resp = postMessage(t, ts.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      "test_echo",
			"arguments": map[string]any{"message": "over http"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tools/call status = %d, want 200", resp.StatusCode)
	}
	decoded = decodeResponse(t, resp)
	if decoded.Error != nil {
		t.Fatalf("tools/call failed: %+v", decoded.Error)
	}
	var callResult toolsCallResult
	if err := json.Unmarshal(decoded.Result, &callResult); err != nil {
		t.Fatalf("unmarshal tools/call result: %v", err)
	}
	if callResult.IsError {
		t.Fatalf("unexpected tool error: %+v", callResult.Content)
	}
	if callResult.Content[0].Text != `{"echo":"over http"}` {
		t.Errorf("content text = %q, want echoed result", callResult.Content[0].Text)
	}
}

func TestHandler_RequiresInitialize(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testTools(t)).Handler())
	defer ts.Close()

	resp := postMessage(t, ts.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/list",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (protocol errors ride in the body)", resp.StatusCode)
	}
	decoded := decodeResponse(t, resp)
	if decoded.Error == nil {
		t.Fatal("expected error for tools/list before initialize")
	}
	if decoded.Error.Code != codeInvalidRequest {
		t.Errorf("error code = %d, want %d", decoded.Error.Code, codeInvalidRequest)
	}
	if !strings.Contains(decoded.Error.Message, "not initialized") {
		t.Errorf("error message = %q, want it to mention initialization", decoded.Error.Message)
	}
}

func TestHandler_ParseError(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testTools(t)).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL, "application/json", strings.NewReader("{this is not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	decoded := decodeResponse(t, resp)
	if decoded.Error == nil {
		t.Fatal("expected parse error response")
	}
	if decoded.Error.Code != codeParseError {
		t.Errorf("error code = %d, want %d", decoded.Error.Code, codeParseError)
	}
	if string(decoded.ID) != "null" {
		t.Errorf("error id = %s, want null", decoded.ID)
	}
}

func TestHandler_UnsupportedJSONRPCVersion(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testTools(t)).Handler())
	defer ts.Close()

	resp := postMessage(t, ts.URL, map[string]any{
		"jsonrpc": "1.0",
		"id":      1,
		"method":  "ping",
	})
	decoded := decodeResponse(t, resp)
	if decoded.Error == nil {
		t.Fatal("expected error for unsupported JSON-RPC version")
	}
	if decoded.Error.Code != codeInvalidRequest {
		t.Errorf("error code = %d, want %d", decoded.Error.Code, codeInvalidRequest)
	}
}

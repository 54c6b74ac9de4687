// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/gsmcp-foundation/gsmcp/lib/schema"
	"github.com/gsmcp-foundation/gsmcp/lib/toolerror"
	"github.com/gsmcp-foundation/gsmcp/lib/version"
)

// Tool is one callable tool exposed over MCP.
type Tool struct {
	// Name is the wire name clients use in tools/call.
	Name string

	// Title is the human-readable display name.
	Title string

	// Description tells the calling model what the tool does.
	Description string

	// InputSchema is the JSON Schema for the tool's arguments.
	// Arguments are validated against it before Handler runs.
	InputSchema *schema.Schema

	// OutputSchema optionally declares the shape of the handler's
	// result. When set, results carry structuredContent alongside
	// the serialized text block.
	OutputSchema *schema.Schema

	// Annotations carry behavioral hints for clients.
	Annotations *ToolAnnotations

	// Handler executes the tool. The returned value is serialized as
	// the result; a returned error becomes an in-band tool error with
	// its category taken from the toolerror taxonomy.
	Handler func(ctx context.Context, arguments json.RawMessage) (any, error)
}

// tool is a registered tool with its compiled argument schema.
type tool struct {
	def      Tool
	compiled *jsonschema.Schema
}

// ServerConfig holds configuration for creating a Server.
type ServerConfig struct {
	// Name identifies the server in the initialize response. Required.
	Name string
	// Tools are the tools to expose. Names must be unique and every
	// tool needs an input schema and a handler.
	Tools []Tool
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Server is an MCP server that dispatches JSON-RPC 2.0 messages to
// registered tools. The same dispatch core serves the
// newline-delimited stdio transport ([Server.Run]) and the HTTP
// transport ([Server.Handler]).
type Server struct {
	name        string
	tools       []tool
	toolsByName map[string]*tool
	logger      *slog.Logger
	initialized atomic.Bool
}

// NewServer creates an MCP server, compiling each tool's input schema
// for argument validation. Schema compilation failures and malformed
// tool definitions are programming errors surfaced at construction.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("mcp: Name is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		name:   config.Name,
		logger: logger,
	}

	for _, def := range config.Tools {
		if def.Name == "" {
			return nil, fmt.Errorf("mcp: tool with empty name")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("mcp: tool %q has no handler", def.Name)
		}
		if def.InputSchema == nil {
			return nil, fmt.Errorf("mcp: tool %q has no input schema", def.Name)
		}
		compiled, err := compileInputSchema(def.Name, def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("mcp: tool %q: %w", def.Name, err)
		}
		s.tools = append(s.tools, tool{def: def, compiled: compiled})
	}

	s.toolsByName = make(map[string]*tool, len(s.tools))
	for i := range s.tools {
		name := s.tools[i].def.Name
		if _, exists := s.toolsByName[name]; exists {
			return nil, fmt.Errorf("mcp: duplicate tool name %q", name)
		}
		s.toolsByName[name] = &s.tools[i]
	}

	return s, nil
}

// Serve starts the MCP server reading from os.Stdin and writing to
// os.Stdout. This is the entry point for the --stdio server mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.Run(ctx, os.Stdin, os.Stdout)
}

// Run processes JSON-RPC 2.0 requests from input and writes responses
// to output until input reaches EOF. Each request occupies a single
// line (newline-delimited JSON-RPC, not Content-Length framed). The
// context is passed through to tool handlers; cancellation aborts
// in-flight tool calls, while the read loop itself ends at EOF.
func (s *Server) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	// MCP messages can be large (tool results carrying full pages).
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	encoder := json.NewEncoder(output)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			if writeErr := writeError(encoder, json.RawMessage("null"), codeParseError, "parse error: "+err.Error()); writeErr != nil {
				return fmt.Errorf("writing parse error response: %w", writeErr)
			}
			continue
		}

		if req.JSONRPC != "2.0" {
			if !req.isNotification() {
				if writeErr := writeError(encoder, req.ID, codeInvalidRequest, "unsupported JSON-RPC version"); writeErr != nil {
					return fmt.Errorf("writing version error response: %w", writeErr)
				}
			}
			continue
		}

		// Notifications have no ID and receive no response.
		if req.isNotification() {
			continue
		}

		if err := s.dispatch(ctx, encoder, &req); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// dispatch routes a JSON-RPC request to the appropriate handler.
// initialize and ping are accepted at any time; everything else
// requires a completed initialize exchange.
func (s *Server) dispatch(ctx context.Context, encoder *json.Encoder, req *request) error {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(encoder, req)
	case "ping":
		return s.handlePing(encoder, req)
	case "tools/list":
		if !s.initialized.Load() {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsList(encoder, req)
	case "tools/call":
		if !s.initialized.Load() {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsCall(ctx, encoder, req)
	default:
		return writeError(encoder, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (s *Server) handleInitialize(encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for initialize")
	}

	var params initializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid initialize params: "+err.Error())
	}

	// The MCP specification says the server responds with its own
	// protocol version and the client decides whether it can proceed.
	// Clients that request a different version are not rejected;
	// MCP versions are additive, so older clients simply ignore
	// fields they don't recognize.
	s.initialized.Store(true)

	s.logger.Info("mcp session initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"requested_protocol", params.ProtocolVersion,
	)

	return writeResult(encoder, req.ID, initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: serverCapabilities{
			Tools: &toolCapability{},
		},
		ServerInfo: serverInfo{
			Name:    s.name,
			Version: version.Short(),
		},
	})
}

func (s *Server) handlePing(encoder *json.Encoder, req *request) error {
	return writeResult(encoder, req.ID, map[string]any{})
}

func (s *Server) handleToolsList(encoder *json.Encoder, req *request) error {
	descriptions := make([]toolDescription, 0, len(s.tools))
	for i := range s.tools {
		def := &s.tools[i].def
		descriptions = append(descriptions, toolDescription{
			Name:         def.Name,
			Title:        def.Title,
			Description:  def.Description,
			InputSchema:  def.InputSchema,
			OutputSchema: def.OutputSchema,
			Annotations:  def.Annotations,
		})
	}
	return writeResult(encoder, req.ID, toolsListResult{Tools: descriptions})
}

func (s *Server) handleToolsCall(ctx context.Context, encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for tools/call")
	}

	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
	}

	t, ok := s.toolsByName[params.Name]
	if !ok {
		return writeError(encoder, req.ID, codeInvalidParams, "unknown tool: "+params.Name)
	}

	// Argument validation failures are tool-level errors, not
	// protocol errors: they go in-band so the calling model can read
	// them and correct the arguments.
	if validationErr := t.validateArguments(params.Arguments); validationErr != nil {
		s.logger.Warn("tool arguments rejected",
			"tool", t.def.Name,
			"error", validationErr,
		)
		return writeResult(encoder, req.ID, errorResult(validationErr))
	}

	result := s.executeTool(ctx, t, params.Arguments)
	return writeResult(encoder, req.ID, result)
}

// executeTool runs a tool handler and assembles its result. Per the
// MCP specification, tools with an outputSchema return both
// structuredContent (the typed result) and a text content block
// (serialized JSON for backward compatibility).
func (s *Server) executeTool(ctx context.Context, t *tool, arguments json.RawMessage) toolsCallResult {
	value, err := t.def.Handler(ctx, arguments)
	if err != nil {
		s.logger.Warn("tool call failed",
			"tool", t.def.Name,
			"error", err,
		)
		return errorResult(err)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		// The handler produced a value its own result type cannot
		// serialize. A bug in the tool, not a runtime condition.
		return errorResult(toolerror.Internal("serializing tool result: %w", err))
	}

	result := toolsCallResult{
		Content: []contentBlock{{Type: "text", Text: string(encoded)}},
	}
	if t.def.OutputSchema != nil {
		result.StructuredContent = value
	}
	return result
}

// errorResult builds an in-band tool failure: the error text in a
// content block plus structured category metadata so callers can make
// programmatic recovery decisions.
func errorResult(err error) toolsCallResult {
	return toolsCallResult{
		Content:   []contentBlock{{Type: "text", Text: err.Error()}},
		IsError:   true,
		ErrorInfo: classifyError(err),
	}
}

// classifyError extracts structured error metadata from an error.
// Tool handlers return toolerror values; context errors from canceled
// or timed-out calls classify as transient.
func classifyError(err error) *errorInfo {
	var toolErr *toolerror.Error
	if errors.As(err, &toolErr) {
		return &errorInfo{
			Category:  string(toolErr.Category),
			Retryable: toolErr.Category == toolerror.CategoryTransient,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &errorInfo{Category: string(toolerror.CategoryTransient), Retryable: true}
	}

	return &errorInfo{Category: string(toolerror.CategoryInternal), Retryable: false}
}

// writeResult sends a JSON-RPC 2.0 success response.
func writeResult(encoder *json.Encoder, id json.RawMessage, result any) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// writeError sends a JSON-RPC 2.0 error response.
func writeError(encoder *json.Encoder, id json.RawMessage, code int, message string) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}

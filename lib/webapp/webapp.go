// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package webapp assembles the google-search-mcp application: the
// Custom Search client, the MCP server with its tool definitions, and
// the HTTP surface (health endpoint plus the MCP transport).
//
// The server binary does not construct the application directly. It
// resolves a "module:attribute" reference through [Resolve], the same
// reference the launcher passes on the command line. The table of
// known references keeps that argument a checked value: a typo fails
// at startup with the known entries listed, not at first request.
package webapp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/gsmcp-foundation/gsmcp/lib/config"
	"github.com/gsmcp-foundation/gsmcp/lib/customsearch"
	"github.com/gsmcp-foundation/gsmcp/lib/mcp"
)

// ServerName is the service identity reported by the health endpoint
// and the MCP initialize response.
const ServerName = "google-search-mcp"

// Config holds everything needed to assemble the application.
type Config struct {
	// Search carries the Google Programmable Search credentials.
	Search config.Search

	// SearchBaseURL overrides the Custom Search API endpoint.
	// Empty means the production endpoint; tests point it at a local
	// fixture server.
	SearchBaseURL string

	// HTTPClient is used for outbound Custom Search requests. If nil,
	// a client with the default request timeout is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// App is the assembled application.
type App struct {
	search *customsearch.Client
	server *mcp.Server
	logger *slog.Logger
}

// entryPoints maps "module:attribute" references to application
// constructors.
var entryPoints = map[string]func(Config) (*App, error){
	"server:app": New,
}

// Resolve looks up an application reference and constructs the
// application it names.
func Resolve(ref string, cfg Config) (*App, error) {
	construct, ok := entryPoints[ref]
	if !ok {
		return nil, fmt.Errorf("unknown application reference %q (known: %s)",
			ref, strings.Join(knownRefs(), ", "))
	}
	return construct(cfg)
}

// knownRefs returns the registered application references, sorted for
// stable error messages.
func knownRefs() []string {
	refs := make([]string, 0, len(entryPoints))
	for ref := range entryPoints {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// New assembles the application: a Custom Search client, the
// google.search tool bound to it, and an MCP server exposing the tool.
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	search, err := customsearch.NewClient(customsearch.ClientConfig{
		APIKey:         cfg.Search.APIKey,
		SearchEngineID: cfg.Search.SearchEngineID,
		BaseURL:        cfg.SearchBaseURL,
		HTTPClient:     cfg.HTTPClient,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating search client: %w", err)
	}

	tool, err := searchTool(search)
	if err != nil {
		return nil, fmt.Errorf("building search tool: %w", err)
	}

	server, err := mcp.NewServer(mcp.ServerConfig{
		Name:   ServerName,
		Tools:  []mcp.Tool{tool},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating mcp server: %w", err)
	}

	return &App{
		search: search,
		server: server,
		logger: logger,
	}, nil
}

// MCP returns the application's MCP server, for serving over stdio.
func (a *App) MCP() *mcp.Server {
	return a.server
}

// Handler returns the application's HTTP surface: the health endpoint
// at / and the MCP transport at /mcp. Unknown paths return 404.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	// Equivalent of the Go 1.22+ pattern "GET /{$}": exactly the root
	// path, GET (and HEAD) only.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		a.handleHealth(w, r)
	})
	mux.Handle("/mcp", a.server.Handler())
	return mux
}

// healthStatus is the health endpoint's response body.
type healthStatus struct {
	OK     bool   `json:"ok"`
	Server string `json:"server"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, healthStatus{OK: true, Server: ServerName})
}

// writeJSON encodes value as JSON into w, setting the Content-Type
// header. If encoding fails (typically because the client
// disconnected), the error is logged.
func (a *App) writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		a.logger.Warn("writing JSON response", "error", err)
	}
}

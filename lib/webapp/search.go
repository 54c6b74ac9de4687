// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gsmcp-foundation/gsmcp/lib/customsearch"
	"github.com/gsmcp-foundation/gsmcp/lib/mcp"
	"github.com/gsmcp-foundation/gsmcp/lib/schema"
	"github.com/gsmcp-foundation/gsmcp/lib/toolerror"
)

// searchParams are the google.search tool arguments. The struct tags
// define the tool's public contract: property names, defaults, bounds,
// and the descriptions calling models read.
type searchParams struct {
	Query           string `json:"query" required:"true" desc:"Search query text"`
	Num             int    `json:"num" default:"5" min:"1" max:"10" desc:"Number of results (1-10)"`
	Start           int    `json:"start" default:"1" min:"1" desc:"Start index for pagination (1-based)"`
	Safe            string `json:"safe" default:"off" enum:"off,active" desc:"SafeSearch level"`
	Language        string `json:"lr" desc:"Restrict results to a language (e.g., 'lang_en')"`
	Geolocation     string `json:"gl" desc:"Geolocation code (e.g., 'us', 'in')"`
	CountryRestrict string `json:"cr" desc:"Country restrict, e.g., 'countryIN'"`
	SiteSearch      string `json:"siteSearch" desc:"Limit results to a specific domain"`
}

// searchTool builds the google.search tool definition bound to a
// Custom Search client.
func searchTool(client *customsearch.Client) (mcp.Tool, error) {
	input, err := schema.ParamsSchema(&searchParams{})
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("input schema: %w", err)
	}
	output, err := schema.OutputSchema(&customsearch.Result{})
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("output schema: %w", err)
	}

	readOnly := true
	openWorld := true

	return mcp.Tool{
		Name:         "google.search",
		Title:        "Google Search",
		Description:  "Search the web via Google Programmable Search (CSE). Returns top organic results with title, link, snippet.",
		InputSchema:  input,
		OutputSchema: output,
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:  &readOnly,
			OpenWorldHint: &openWorld,
		},
		Handler: func(ctx context.Context, arguments json.RawMessage) (any, error) {
			var params searchParams
			if err := json.Unmarshal(arguments, &params); err != nil {
				return nil, toolerror.Validation("parsing arguments: %v", err)
			}
			if err := schema.ApplyDefaults(&params); err != nil {
				return nil, toolerror.Internal("applying defaults: %v", err)
			}

			result, err := client.Search(ctx, customsearch.Query{
				Text:             params.Query,
				Num:              params.Num,
				Start:            params.Start,
				Safe:             params.Safe,
				LanguageRestrict: params.Language,
				Geolocation:      params.Geolocation,
				CountryRestrict:  params.CountryRestrict,
				SiteSearch:       params.SiteSearch,
			})
			if err != nil {
				return nil, classifySearchError(err)
			}
			return result, nil
		},
	}, nil
}

// classifySearchError maps Custom Search failures onto the tool error
// taxonomy. API responses carry their own classification in the HTTP
// status; anything that never produced a status (connection failures,
// timeouts) is worth retrying.
func classifySearchError(err error) error {
	if apiErr, ok := customsearch.AsAPIError(err); ok {
		switch {
		case apiErr.StatusCode == http.StatusBadRequest:
			return toolerror.Validation("google api rejected the query: %w", err)
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return toolerror.Forbidden("google api refused the request: %w", err)
		case apiErr.StatusCode == http.StatusNotFound:
			return toolerror.NotFound("google api endpoint not found: %w", err)
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500:
			return toolerror.Transient("google api unavailable: %w", err)
		default:
			return toolerror.Internal("google api error: %w", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return toolerror.Transient("search request aborted: %w", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return toolerror.Transient("reaching google api: %w", err)
	}

	return toolerror.Internal("search failed: %w", err)
}

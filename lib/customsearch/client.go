// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package customsearch is a client for the Google Programmable Search
// (Custom Search) JSON API. It exposes the small slice of the API the
// search server needs: one page of organic web results per request,
// mapped to a compact result shape.
package customsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gsmcp-foundation/gsmcp/lib/netutil"
)

// DefaultBaseURL is the Custom Search JSON API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// defaultTimeout bounds the whole search request, connection setup
// through body read.
const defaultTimeout = 20 * time.Second

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// APIKey authenticates requests (the "key" parameter). Required.
	APIKey string
	// SearchEngineID selects the programmable search engine to query
	// (the "cx" parameter). Required.
	SearchEngineID string
	// BaseURL overrides the API endpoint. Empty means DefaultBaseURL.
	BaseURL string
	// HTTPClient is used for all requests. If nil, a client with a
	// 20-second timeout is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client queries the Custom Search JSON API. Safe for concurrent use.
type Client struct {
	apiKey         string
	searchEngineID string
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewClient creates a Custom Search client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("customsearch: APIKey is required")
	}
	if config.SearchEngineID == "" {
		return nil, fmt.Errorf("customsearch: SearchEngineID is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("customsearch: invalid BaseURL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:         config.APIKey,
		searchEngineID: config.SearchEngineID,
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     httpClient,
		logger:         logger,
	}, nil
}

// Query holds the parameters for one search request. Text, Num, and
// Start are always sent; the remaining fields are omitted from the
// request when empty, letting the API apply its own defaults.
type Query struct {
	// Text is the search query (the "q" parameter). Required.
	Text string

	// Num is the number of results to request. The API accepts 1
	// through 10.
	Num int

	// Start is the 1-based index of the first result.
	Start int

	// Safe is the SafeSearch level, "off" or "active".
	Safe string

	// LanguageRestrict restricts results to a language, e.g.
	// "lang_en" (the "lr" parameter).
	LanguageRestrict string

	// Geolocation is the end user's location code, e.g. "us" (the
	// "gl" parameter).
	Geolocation string

	// CountryRestrict restricts results by document country, e.g.
	// "countryIN" (the "cr" parameter).
	CountryRestrict string

	// SiteSearch limits results to a specific domain.
	SiteSearch string
}

// Result is the compact search result returned to callers.
type Result struct {
	// Query echoes the search text.
	Query string `json:"query"`

	// TotalResults is the API's estimate of the total number of
	// matching documents.
	TotalResults int64 `json:"totalResults"`

	// Results holds the organic results for the requested page.
	// Never nil: an empty page marshals as [].
	Results []ResultItem `json:"results"`

	// NextStart is the start index of the next page, or nil when the
	// API returned a short page. Marshals as JSON null when nil.
	NextStart *int `json:"nextStart"`
}

// ResultItem is one organic search result.
type ResultItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

// searchResponse is the subset of the API response the client reads.
type searchResponse struct {
	SearchInformation searchInformation `json:"searchInformation"`
	Items             []searchItem      `json:"items"`
}

// searchInformation carries result metadata. TotalResults is a
// decimal string on the wire, not a number.
type searchInformation struct {
	TotalResults string `json:"totalResults"`
}

type searchItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

// errorEnvelope is the Google API error response shape.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Search executes one query and returns a compact result page.
// API-level failures are returned as *APIError, recoverable via
// errors.As; transport failures are returned as wrapped errors.
func (c *Client) Search(ctx context.Context, query Query) (*Result, error) {
	if query.Text == "" {
		return nil, fmt.Errorf("customsearch: query text is required")
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.searchEngineID)
	params.Set("q", query.Text)
	params.Set("num", strconv.Itoa(query.Num))
	params.Set("start", strconv.Itoa(query.Start))
	if query.Safe != "" {
		params.Set("safe", query.Safe)
	}
	if query.LanguageRestrict != "" {
		params.Set("lr", query.LanguageRestrict)
	}
	if query.Geolocation != "" {
		params.Set("gl", query.Geolocation)
	}
	if query.CountryRestrict != "" {
		params.Set("cr", query.CountryRestrict)
	}
	if query.SiteSearch != "" {
		params.Set("siteSearch", query.SiteSearch)
	}

	requestURL := c.baseURL + "?" + params.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("customsearch: failed to create request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("customsearch: search request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("customsearch: failed to read response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, apiErrorFromBody(response.StatusCode, body)
	}

	var wire searchResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("customsearch: failed to parse search response: %w", err)
	}

	result := compactResult(query, &wire)
	c.logger.Debug("search completed",
		"query", query.Text,
		"results", len(result.Results),
		"total_results", result.TotalResults,
	)
	return result, nil
}

// compactResult maps the wire response to the compact result shape.
func compactResult(query Query, wire *searchResponse) *Result {
	items := make([]ResultItem, 0, len(wire.Items))
	for _, item := range wire.Items {
		items = append(items, ResultItem{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		})
	}

	// TotalResults is a decimal string on the wire. Absent or
	// malformed counts as zero rather than failing the search.
	totalResults, _ := strconv.ParseInt(wire.SearchInformation.TotalResults, 10, 64)

	result := &Result{
		Query:        query.Text,
		TotalResults: totalResults,
		Results:      items,
	}

	// A full page means more results may follow; a short page is the
	// end of the result set.
	if len(items) == query.Num {
		next := query.Start + query.Num
		result.NextStart = &next
	}
	return result
}

// apiErrorFromBody builds an *APIError from a non-2xx response body.
// Classification downstream needs the status code even when the body
// is not the documented envelope, so every non-2xx becomes an
// APIError, with the raw body as the message in the undocumented case.
func apiErrorFromBody(statusCode int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Status:     envelope.Error.Status,
		Message:    envelope.Error.Message,
	}
}

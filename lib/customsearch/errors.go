// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

package customsearch

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from the Custom
// Search API. Callers can use errors.As to extract the structured
// information:
//
//	var apiErr *customsearch.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusTooManyRequests { ... }
//	}
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Status is the canonical error status token from the Google
	// error envelope (e.g. "PERMISSION_DENIED"). Empty when the
	// response carried no envelope.
	Status string
	// Message is the human-readable error description.
	Message string
}

func (e *APIError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("customsearch: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("customsearch: %s (%d): %s", e.Status, e.StatusCode, e.Message)
}

// AsAPIError extracts an *APIError from an error chain. Returns nil
// and false when the chain contains none.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

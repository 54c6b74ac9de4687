// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package config reads the service configuration from the process
// environment.
//
// The search service is configured entirely through two environment
// variables, typically provided by a .env file in development (see
// lib/dotenv) and by the deployment environment in production. There
// is no configuration file and no hidden override chain: what is in
// the environment is what runs.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names for the Google Programmable Search
// credentials.
const (
	// EnvAPIKey holds the Custom Search JSON API key.
	EnvAPIKey = "GOOGLE_API_KEY"

	// EnvSearchEngineID holds the Programmable Search Engine
	// identifier (the "cx" request parameter).
	EnvSearchEngineID = "GOOGLE_CSE_ID"
)

// Search is the configuration for the Google Programmable Search
// backend.
type Search struct {
	// APIKey authenticates requests against the Custom Search JSON API.
	APIKey string

	// SearchEngineID identifies the Programmable Search Engine to
	// query.
	SearchEngineID string
}

// FromEnv reads the search configuration from the process environment.
// Both variables are required; the error names every missing one so a
// misconfigured deployment fails with a complete diagnosis rather than
// one variable at a time.
func FromEnv() (Search, error) {
	cfg := Search{
		APIKey:         os.Getenv(EnvAPIKey),
		SearchEngineID: os.Getenv(EnvSearchEngineID),
	}

	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if cfg.SearchEngineID == "" {
		missing = append(missing, EnvSearchEngineID)
	}
	if len(missing) > 0 {
		return Search{}, fmt.Errorf("missing %s in environment", strings.Join(missing, " and "))
	}

	return cfg, nil
}

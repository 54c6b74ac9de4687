// Copyright 2026 The GSMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package dotenv reads .env files into the process environment.
//
// The server reads its Google API credentials from the environment;
// a .env file in the working directory supplies values for local
// development. Variables already present in the process environment
// win over file values: the file provides defaults, not overrides.
package dotenv

import (
	"fmt"
	"os"
	"strings"
)

// Load reads the dotenv file at path and sets each variable in the
// process environment, skipping variables that are already set. A
// missing file is not an error; the file is optional by design. A
// malformed file is an error.
func Load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading env file %s: %w", path, err)
	}

	vars, err := Parse(content, path)
	if err != nil {
		return err
	}

	for key, value := range vars {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("setting %s from %s: %w", key, path, err)
		}
	}
	return nil
}

// Parse parses dotenv-format content and returns the variables it
// defines. Supported format:
//
//   - Lines starting with # are comments
//   - Empty lines are ignored
//   - KEY=value (unquoted; an inline " #" comment is stripped)
//   - KEY="value" (double-quoted, escape sequences: \n, \r, \t, \\, \", \$)
//   - KEY='value' (single-quoted, literal, no escape processing)
//   - export KEY=value (export prefix is optional and ignored)
//   - KEY= (empty value)
//
// The filename parameter is used for error messages.
func Parse(content []byte, filename string) (map[string]string, error) {
	vars := make(map[string]string)

	for i, line := range strings.Split(string(content), "\n") {
		lineNum := i + 1

		// Trim a trailing carriage return (Windows line endings),
		// then surrounding whitespace.
		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimSpace(line)

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%s:%d: invalid format (missing '=')", filename, lineNum)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%s:%d: empty variable name", filename, lineNum)
		}

		parsed, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filename, lineNum, err)
		}

		vars[key] = parsed
	}

	return vars, nil
}

// parseValue parses a dotenv value, handling quoting and escape
// sequences.
func parseValue(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return "", nil
	}

	if value[0] == '"' {
		if len(value) < 2 || value[len(value)-1] != '"' {
			return "", fmt.Errorf("unterminated double quote")
		}
		return unescapeDoubleQuoted(value[1 : len(value)-1]), nil
	}
	if value[0] == '\'' {
		if len(value) < 2 || value[len(value)-1] != '\'' {
			return "", fmt.Errorf("unterminated single quote")
		}
		// Single-quoted: literal value, no escape processing.
		return value[1 : len(value)-1], nil
	}

	// Unquoted: strip an inline comment.
	if idx := strings.Index(value, " #"); idx != -1 {
		value = strings.TrimSpace(value[:idx])
	}

	return value, nil
}

// unescapeDoubleQuoted processes escape sequences in a double-quoted
// value. Unknown escapes are kept verbatim.
func unescapeDoubleQuoted(value string) string {
	var result strings.Builder
	result.Grow(len(value))

	i := 0
	for i < len(value) {
		if value[i] == '\\' && i+1 < len(value) {
			switch next := value[i+1]; next {
			case 'n':
				result.WriteByte('\n')
			case 'r':
				result.WriteByte('\r')
			case 't':
				result.WriteByte('\t')
			case '\\':
				result.WriteByte('\\')
			case '"':
				result.WriteByte('"')
			case '$':
				result.WriteByte('$')
			default:
				result.WriteByte('\\')
				result.WriteByte(next)
			}
			i += 2
			continue
		}
		result.WriteByte(value[i])
		i++
	}

	return result.String()
}

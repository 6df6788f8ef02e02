// Package utils provides small helpers shared by the HTTP and CLI layers.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Limit parses a list-size query value. Missing, invalid or non-positive
// values yield def; anything above max is clamped to max.
func Limit(s string, def, max int) int {
	n := AtoiDefault(strings.TrimSpace(s), def)
	if n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// Bool parses a boolean query value, returning def when s is empty and
// ok=false when s is not a recognized boolean.
func Bool(s string, def bool) (v bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def, false
	}
	return b, true
}

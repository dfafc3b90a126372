// Package util provides common utility functions used across the codebase.
package util

import "strings"

// Truncate shortens a string to max characters, appending "..." when anything
// is cut. Strings at or under the limit are returned unchanged. A limit of 3
// or less returns the bare ellipsis for over-long input.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return "..."
	}
	return s[:max-3] + "..."
}

// JoinOrDefault joins strings with ", " or returns the default value for empty slices.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// internal/app/system/sanitize/sanitize.go

// Package sanitize strips markup from user-supplied text before it is
// persisted. Chat messages and display names are plain text; anything
// that looks like HTML is removed, not escaped.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

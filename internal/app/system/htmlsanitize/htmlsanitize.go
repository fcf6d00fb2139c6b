// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-supplied display strings.
// Map names, place names, and grant display names come straight from
// client input and are echoed back to every collaborator, so they are
// reduced to plain text before storage.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var strict = bluemonday.StrictPolicy()

// PlainText removes all HTML tags and attributes from s, leaving only
// text content.
func PlainText(s string) string {
	return strict.Sanitize(s)
}

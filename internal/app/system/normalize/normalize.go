// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user-supplied identity and display
// strings before they are stored or compared. Every identity that enters
// the engine (owner, collaborator, acting user) passes through Email so
// that grant keys and collaborator lookups compare byte-for-byte.
package normalize

import "strings"

// Email lowercases and trims an identity email.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace from a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string from a request body.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

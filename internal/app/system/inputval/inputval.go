// internal/app/system/inputval/inputval.go

// Package inputval validates raw request input before it reaches the
// engine. Identities are emails; resource ids are Mongo ObjectID hex
// strings carried in URL path segments.
package inputval

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsValidEmail reports whether s looks like a deliverable address:
// one local part and one domain, neither empty, no whitespace or angle
// brackets, no leading/trailing/consecutive dots in either part.
// Single-label domains are accepted (useful in dev/test environments).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, " \t<>") {
		return false
	}
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return false
	}
	ok := func(p string) bool {
		if p == "" || strings.HasPrefix(p, ".") || strings.HasSuffix(p, ".") {
			return false
		}
		return !strings.Contains(p, "..")
	}
	return ok(parts[0]) && ok(parts[1])
}

// IsValidObjectID reports whether s (after trimming) is a 24-character
// hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidLatitude reports whether v is inside the WGS84 latitude range.
// NaN fails both bounds.
func IsValidLatitude(v float64) bool {
	return v >= -90 && v <= 90
}

// IsValidLongitude reports whether v is inside the WGS84 longitude range.
func IsValidLongitude(v float64) bool {
	return v >= -180 && v <= 180
}

// maxEmojiRunes bounds a place marker. A single emoji grapheme can span
// several runes (flags, skin tones, ZWJ family sequences), so this is a
// rune budget for one grapheme, not a character count.
const maxEmojiRunes = 16

// IsValidEmoji reports whether s can serve as a place marker. Empty is
// accepted (the client renders a default marker); otherwise s must be
// valid UTF-8 with no whitespace or control characters and fit within
// the rune bound.
func IsValidEmoji(s string) bool {
	if s == "" {
		return true
	}
	if !utf8.ValidString(s) {
		return false
	}
	if utf8.RuneCountInString(s) > maxEmojiRunes {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

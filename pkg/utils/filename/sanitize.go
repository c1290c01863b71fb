// Package filename provides utilities for sanitizing strings into safe filenames.
package filename

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxBytes is the longest name most filesystems accept for a single path element.
const MaxBytes = 255

// invalidCharsRe matches characters not safe for filenames across all major OSes.
var invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x80-\x9f]`)

// reservedRe matches names Windows refuses regardless of extension.
var reservedRe = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)

// Sanitize strips characters that are unsafe in a single path element while
// keeping the name readable: spaces and punctuation like " - " survive.
// The result is NFC-normalized and truncated to maxLen bytes (MaxBytes when
// maxLen <= 0) without splitting a UTF-8 sequence. An unusable name yields "".
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 || maxLen > MaxBytes {
		maxLen = MaxBytes
	}

	s := norm.NFC.String(name)
	s = invalidCharsRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if s == "." || s == ".." || reservedRe.MatchString(s) {
		return ""
	}

	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}

	// Windows drops trailing dots and spaces silently.
	s = strings.TrimRight(s, ". ")
	return s
}

// SanitizeOr returns Sanitize(name) or fallback when nothing usable is left.
func SanitizeOr(name, fallback string, maxLen int) string {
	if s := Sanitize(name, maxLen); s != "" {
		return s
	}
	return Sanitize(fallback, maxLen)
}

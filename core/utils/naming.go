package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonAlphaNumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every non-alphanumeric run into a single
// underscore. "DJ Test" becomes "dj_test".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlphaNumeric.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "untitled"
	}
	return s
}

// TitleSlug sanitizes a track title for use in a storage key: lowercase,
// non-alphanumerics collapsed to "-", capped at maxLen.
func TitleSlug(title string, maxLen int) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonAlphaNumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "untitled"
	}
	if maxLen > 0 && len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "-")
	}
	return s
}

// ReleaseID derives the globally unique release id from the artist name and a
// creation timestamp: "{artist_slug}_FW-{unixMillis}".
func ReleaseID(artistName string, createdAt time.Time) string {
	return fmt.Sprintf("%s_FW-%d", Slugify(artistName), createdAt.UnixMilli())
}

// TrackBaseName builds the "{NN}-{slug}" base used for full-rendition keys.
// Track numbers are zero-padded to two digits.
func TrackBaseName(trackNumber int, title string) string {
	return fmt.Sprintf("%02d-%s", trackNumber, TitleSlug(title, 40))
}

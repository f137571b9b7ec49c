package util

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Stem returns the file name without directory or extension, with anything
// outside [A-Za-z0-9._-] mapped to underscores so it is safe in output names.
func Stem(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return sanitize(stem)
}

// StemFromURL extracts a filename stem from the URL path. Only a last segment
// that carries an extension counts as a filename; anything else returns "".
func StemFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	seg := path.Base(u.Path)
	if seg == "." || seg == "/" || path.Ext(seg) == "" {
		return ""
	}
	return Stem(seg)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

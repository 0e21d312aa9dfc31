package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces an uploaded filename to a safe basename: path
// separators and parent references are stripped and anything outside
// [A-Za-z0-9._-] is replaced with an underscore. Returns "" when nothing
// usable remains, in which case the caller should skip the upload.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" || out == "." || out == ".." {
		return ""
	}
	return out
}

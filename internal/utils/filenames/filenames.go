package filenames

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sanitize strips path components and any character that could be abused in a
// stored filename, keeping letters, digits, dots, dashes and underscores.
// Spaces become underscores. An empty or fully-stripped name falls back to
// "file".
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}

// ForUpload builds a collision-free stored name for an uploaded file:
// a random uuid prefix plus the sanitized original name.
func ForUpload(original string) string {
	return uuid.NewString() + "_" + Sanitize(original)
}

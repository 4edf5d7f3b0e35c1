package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize converts a path to slash-separated form relative to a root.
// Pattern matching always happens against slash-separated relative paths,
// regardless of the host platform's separator.
func Normalize(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsHidden reports whether any element of the slash-separated path starts
// with a dot.
func IsHidden(slashPath string) bool {
	for _, part := range strings.Split(slashPath, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

package util

import (
	"path/filepath"
	"strings"
)

// IsValidImageFile checks if a filename has an accepted image extension
func IsValidImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

// ValidUsername checks the username shape: 3-30 chars, letters, digits,
// underscore, dot; must start with a letter or digit.
func ValidUsername(username string) bool {
	if len(username) < 3 || len(username) > 30 {
		return false
	}
	for i, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

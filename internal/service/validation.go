package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fakex/internal/models"
)

// DefaultMaxContentLength bounds posts and comments when no limit is configured.
const DefaultMaxContentLength = 280

const maxNameLength = 100

var allowedPictureSuffixes = []string{".jpeg", ".jpg", ".gif", ".png", ".webp"}

// validateContent enforces 1..maxLen runes and rejects whitespace-only text.
// label names the field in error messages, e.g. "Post".
func validateContent(label, content string, maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxContentLength
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError(label + " content is required")
	}
	if utf8.RuneCountInString(content) > maxLen {
		return models.NewValidationError(fmt.Sprintf("%s content must be at most %d characters", label, maxLen))
	}
	return nil
}

// validPicture accepts the allowed image suffixes in any letter case.
func validPicture(picture string) bool {
	lower := strings.ToLower(picture)
	for _, suffix := range allowedPictureSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

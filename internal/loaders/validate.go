package loaders

import (
	"fmt"
	"strings"
)

const (
	minNameLength = 3
	maxNameLength = 50
)

// Substrings that mark a placeholder or corrupted name in the feed
var suspiciousNameParts = []string{
	"unknown",
	"error",
	"null",
	"undefined",
	"player player",
	"test",
	"temp",
}

// ValidatePlayerName rejects names that are empty, generated placeholders,
// or otherwise implausible
func ValidatePlayerName(playerID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if name == fmt.Sprintf("Player %d", playerID) {
		return fmt.Errorf("placeholder name %q", name)
	}

	lower := strings.ToLower(name)
	for _, part := range suspiciousNameParts {
		if strings.Contains(lower, part) {
			return fmt.Errorf("suspicious name %q", name)
		}
	}

	if n := len([]rune(name)); n < minNameLength || n > maxNameLength {
		return fmt.Errorf("name length %d out of range", n)
	}
	return nil
}

package validate

import (
	"fmt"
	"strings"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
)

// MaxFiles bounds how many reference photos one request may carry.
const MaxFiles = 2

// Request-level keyword filter. This is a plain case-insensitive substring
// match, deliberately looser than the word-boundary filter applied at prompt
// build time.
var disallowedKeywords = []string{
	"nsfw", "nude", "naked", "sex", "porn", "explicit",
	"kill", "murder", "violence", "gore", "blood",
	"drug", "cocaine", "heroin", "meth",
	"weapon", "gun", "knife", "bomb",
	"child", "kid", "minor", "underage",
}

// ContainsDisallowed reports whether text contains any disallowed keyword.
func ContainsDisallowed(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range disallowedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Request checks a generation request before any job state is created.
// All returned errors wrap domain.ErrInvalidRequest.
func Request(nickname string, fileCount int) error {
	if fileCount < 1 {
		return fmt.Errorf("%w: at least one image is required", domain.ErrInvalidRequest)
	}
	if fileCount > MaxFiles {
		return fmt.Errorf("%w: maximum %d images allowed", domain.ErrInvalidRequest, MaxFiles)
	}
	if nickname != "" && ContainsDisallowed(nickname) {
		return fmt.Errorf("%w: inappropriate content detected in nickname", domain.ErrInvalidRequest)
	}
	return nil
}

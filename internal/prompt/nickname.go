package prompt

import (
	"regexp"
	"strings"
)

// The prompt-level filter is stricter than the request-level one in
// internal/validate: it matches on word boundaries against its own shorter
// list. The two filters are intentionally kept separate.
var disallowedNickname = regexp.MustCompile(`(?i)\b(nsfw|nude|sex|explicit|kill|weapon|drug|violence)\b`)

var nicknameStrip = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)

// ValidNickname reports whether the nickname may appear in a prompt.
func ValidNickname(nickname string) bool {
	if disallowedNickname.MatchString(nickname) {
		return false
	}
	if len(nickname) > MaxNicknameLen || len(nickname) < 1 {
		return false
	}
	return true
}

// SanitizeNickname strips everything but alphanumerics, spaces, dashes and
// underscores, trims surrounding whitespace and truncates to MaxNicknameLen.
func SanitizeNickname(nickname string) string {
	s := strings.TrimSpace(nicknameStrip.ReplaceAllString(nickname, ""))
	if len(s) > MaxNicknameLen {
		s = s[:MaxNicknameLen]
	}
	return s
}

package engine

import (
	"regexp"
	"strings"

	"intake-chatbot/pkg"
)

var (
	questionPunct   = regexp.MustCompile(`[?.,!]`)
	questionFillers = regexp.MustCompile(`(?i)\b(can you|could you|please|tell me|describe|how|what|when|where|are you)\b`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// NormalizeQuestion reduces an assistant question to a fingerprint: lowercase,
// punctuation stripped, filler phrases and interrogatives removed. The
// reduction is lossy on purpose; distinct questions may collide, and a
// collision is treated as "already asked". It is an approximate repetition
// filter, not an exact one.
func NormalizeQuestion(question string) string {
	key := strings.ToLower(question)
	key = questionPunct.ReplaceAllString(key, "")
	key = questionFillers.ReplaceAllString(key, "")
	key = whitespaceRuns.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// RecentAssistantMessages returns the raw text of the last n assistant
// messages, oldest first. The raw form (not the fingerprint) is embedded in
// question prompts so the model sees the literal phrasing to avoid.
func RecentAssistantMessages(history []pkg.ChatMessage, n int) []string {
	var out []string
	for _, m := range history {
		if m.Role == pkg.RoleAssistant {
			out = append(out, m.Content)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

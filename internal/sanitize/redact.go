package sanitize

import (
	"regexp"
	"strings"
)

// Placeholder replaces every redacted secret.
const Placeholder = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	// Authorization header values echoed back by a provider.
	regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]{8,}`),
	// OpenRouter and OpenAI style keys.
	regexp.MustCompile(`\bsk-(?:or-v1-|proj-)?[A-Za-z0-9_-]{16,}`),
	// JSON fields that carry keys.
	regexp.MustCompile(`(?i)("(?:api_key|apikey|authorization|token)"\s*:\s*")[^"]+`),
}

// Redact removes API keys and bearer tokens from provider diagnostics
// before they are shown or logged.
func Redact(text string) string {
	for _, re := range secretPatterns {
		if re.NumSubexp() > 0 {
			text = re.ReplaceAllString(text, "${1}"+Placeholder)
			continue
		}
		text = re.ReplaceAllString(text, Placeholder)
	}
	return text
}

// RedactKey removes a specific known secret, then applies Redact.
func RedactKey(text, key string) string {
	if key != "" {
		text = strings.ReplaceAll(text, key, Placeholder)
	}
	return Redact(text)
}

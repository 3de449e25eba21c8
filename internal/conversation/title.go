package conversation

import "strings"

// DefaultTitle names a conversation whose opening message says nothing useful.
const DefaultTitle = "Conversation"

var trivialOpeners = []string{"hi", "hello", "hey", "hola", "ok", "okay", "yes", "no", "thanks", "thank you", "y", "n"}

// Title derives a short title from the first user entry.
func Title(entries []Entry) string {
	for _, e := range entries {
		if e.Role == RoleUser {
			return titleFromFirstMessage(e.Content)
		}
	}
	return DefaultTitle
}

func titleFromFirstMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return DefaultTitle
	}

	// Take first line
	if idx := strings.IndexByte(msg, '\n'); idx > 0 {
		msg = strings.TrimSpace(msg[:idx])
	}

	lower := strings.ToLower(strings.TrimRight(msg, "!.?"))
	for _, t := range trivialOpeners {
		if lower == t {
			return DefaultTitle
		}
	}

	if r := []rune(msg); len(r) > 80 {
		msg = string(r[:77]) + "..."
	}
	return msg
}

package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/suykerbuyk/devflow/internal/chat"
	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/segment"
)

// TranscriptData holds everything needed to render a conversation export.
type TranscriptData struct {
	SessionID string
	Title     string
	Model     string
	Date      time.Time
	Identity  conversation.Identity
	Turns     []chat.Turn
}

// Transcript renders a conversation as a Markdown document with YAML
// frontmatter. Assistant segments are written back in their source syntax.
func Transcript(d TranscriptData) string {
	var b strings.Builder

	// Frontmatter
	b.WriteString("---\n")
	b.WriteString(fmt.Sprintf("session_id: \"%s\"\n", d.SessionID))
	if !d.Date.IsZero() {
		b.WriteString(fmt.Sprintf("date: %s\n", d.Date.Format("2006-01-02")))
	}
	if d.Model != "" {
		b.WriteString(fmt.Sprintf("model: %s\n", d.Model))
	}
	if d.Identity.Present() {
		b.WriteString(fmt.Sprintf("author: \"%s\"\n", escapeYAML(d.Identity.Name())))
	}
	b.WriteString(fmt.Sprintf("turns: %d\n", len(d.Turns)))
	b.WriteString("---\n\n")

	title := d.Title
	if title == "" {
		title = conversation.DefaultTitle
	}
	b.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, turn := range d.Turns {
		if turn.Role == conversation.RoleUser {
			b.WriteString("## You\n\n")
			b.WriteString(quote(turn.Text))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString("## Assistant\n\n")
		b.WriteString(MarkdownSegments(turn.Segments))
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// MarkdownSegments writes segments back in the syntax they were parsed from.
func MarkdownSegments(segs []segment.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch s := seg.(type) {
		case segment.Text:
			b.WriteString(s.Content)
		case segment.Bold:
			b.WriteString("**" + s.Content + "**")
		case segment.Heading:
			b.WriteString("### " + s.Content + "\n")
		case segment.Code:
			b.WriteString("```" + s.Language + "\n" + s.Content + "\n```")
		}
	}
	return b.String()
}

func quote(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

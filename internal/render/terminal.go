// Package render lays out conversation turns for a terminal and for
// Markdown export.
package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"github.com/suykerbuyk/devflow/internal/chat"
	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/segment"
)

// AppName is shown in the header.
const AppName = "DevFlow IA"

const (
	codeFormatter = "terminal256"
	codeStyle     = "onedark"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	avatarStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15")).Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("15"))
	boldStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	bubbleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("252")).Padding(0, 1)
	codeBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Terminal renders turns for an interactive terminal. With Plain set no
// escape sequences are emitted and code is not highlighted.
type Terminal struct {
	Width int
	Plain bool
}

// NewTerminal returns a renderer for the given width.
func NewTerminal(width int, plain bool) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{Width: width, Plain: plain}
}

// Header renders the app title and the signed-in identity, if any.
func (t *Terminal) Header(id conversation.Identity) string {
	left := t.style(headerStyle, AppName)
	var right string
	if id.Present() {
		right = fmt.Sprintf("%s %s %s", t.style(avatarStyle, id.Initial()), id.Name(), t.style(mutedStyle, "<"+id.Email+">"))
	} else {
		right = t.style(mutedStyle, "not signed in (devflow init --email you@example.com)")
	}

	if t.Plain {
		return left + "  |  " + right + "\n"
	}
	gap := t.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}

// Turn renders one conversation turn.
func (t *Terminal) Turn(turn chat.Turn) string {
	if turn.Role == conversation.RoleUser {
		return t.userBubble(turn.Text)
	}
	return t.Segments(turn.Segments)
}

// Turns renders a whole conversation.
func (t *Terminal) Turns(turns []chat.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(t.Turn(turn))
		b.WriteString("\n")
	}
	return b.String()
}

// Segments renders an assistant reply.
func (t *Terminal) Segments(segs []segment.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch s := seg.(type) {
		case segment.Text:
			b.WriteString(s.Content)
		case segment.Bold:
			b.WriteString(t.style(boldStyle, s.Content))
		case segment.Heading:
			b.WriteString("\n" + t.style(headingStyle, s.Content) + "\n")
		case segment.Code:
			b.WriteString("\n" + t.codeBlock(s) + "\n")
		}
	}
	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// Error renders a failure notice for the user.
func (t *Terminal) Error(msg string) string {
	return t.style(errorStyle, "error: "+msg) + "\n"
}

func (t *Terminal) userBubble(text string) string {
	if t.Plain {
		return "> " + strings.ReplaceAll(strings.TrimRight(text, "\n"), "\n", "\n> ") + "\n"
	}
	bubble := bubbleStyle.MaxWidth(t.Width * 3 / 4).Render(text)
	return lipgloss.PlaceHorizontal(t.Width, lipgloss.Right, bubble) + "\n"
}

func (t *Terminal) codeBlock(c segment.Code) string {
	if t.Plain {
		return fmt.Sprintf("[%s]\n%s\n[/%s]", c.Language, c.Content, c.Language)
	}

	var hl strings.Builder
	if err := quick.Highlight(&hl, c.Content, c.Language, codeFormatter, codeStyle); err != nil {
		hl.Reset()
		hl.WriteString(c.Content)
	}
	label := t.style(mutedStyle, c.Language)
	return label + "\n" + codeBoxStyle.Render(strings.TrimRight(hl.String(), "\n"))
}

func (t *Terminal) style(s lipgloss.Style, text string) string {
	if t.Plain {
		return text
	}
	return s.Render(text)
}

package render

import (
	"strings"
	"testing"

	"github.com/suykerbuyk/devflow/internal/chat"
	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/segment"
)

func TestTerminal_HeaderWithIdentity(t *testing.T) {
	r := NewTerminal(80, true)
	got := r.Header(conversation.Identity{Email: "ana@example.com", DisplayName: "ana"})

	for _, want := range []string{AppName, "A ana", "<ana@example.com>"} {
		if !strings.Contains(got, want) {
			t.Errorf("Header missing %q: %q", want, got)
		}
	}
}

func TestTerminal_HeaderFallbackName(t *testing.T) {
	r := NewTerminal(80, true)
	got := r.Header(conversation.Identity{Email: "x@example.com"})
	if !strings.Contains(got, conversation.FallbackName) {
		t.Errorf("Header = %q, want fallback name", got)
	}
}

func TestTerminal_HeaderSignedOut(t *testing.T) {
	r := NewTerminal(80, true)
	got := r.Header(conversation.Identity{})
	if !strings.Contains(got, "not signed in") {
		t.Errorf("Header = %q, want login hint", got)
	}
}

func TestTerminal_PlainSegments(t *testing.T) {
	r := NewTerminal(80, true)
	segs := segment.Parse("### Setup\nRun **npm i** then:\n```bash\nnpm start\n```")

	got := r.Segments(segs)
	want := "\nSetup\nRun npm i then:\n\n[bash]\nnpm start\n[/bash]\n"
	if got != want {
		t.Errorf("Segments =\n%q\nwant\n%q", got, want)
	}
}

func TestTerminal_UserTurnIsLiteral(t *testing.T) {
	r := NewTerminal(80, true)
	got := r.Turn(chat.Turn{Role: conversation.RoleUser, Text: "make **this** bold?"})
	if got != "> make **this** bold?\n" {
		t.Errorf("Turn = %q", got)
	}
}

func TestTerminal_StyledCodeFallsBackForUnknownLanguage(t *testing.T) {
	r := NewTerminal(60, false)
	got := r.Segments([]segment.Segment{segment.Code{Language: "notalanguage", Content: "x = 1"}})
	if !strings.Contains(got, "x = 1") {
		t.Errorf("code content missing from %q", got)
	}
	if !strings.Contains(got, "notalanguage") {
		t.Errorf("language label missing from %q", got)
	}
}

func TestTerminal_Turns(t *testing.T) {
	r := NewTerminal(80, true)
	got := r.Turns([]chat.Turn{
		{Role: conversation.RoleUser, Text: "hi"},
		{Role: conversation.RoleAssistant, Segments: []segment.Segment{segment.Text{Content: "hello"}}},
	})
	if got != "> hi\n\nhello\n\n" {
		t.Errorf("Turns = %q", got)
	}
}

func TestNewTerminal_DefaultWidth(t *testing.T) {
	if r := NewTerminal(0, true); r.Width != 80 {
		t.Errorf("Width = %d, want 80", r.Width)
	}
}

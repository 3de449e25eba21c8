package render

import (
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/devflow/internal/chat"
	"github.com/suykerbuyk/devflow/internal/conversation"
	"github.com/suykerbuyk/devflow/internal/segment"
)

func TestTranscript_AllFields(t *testing.T) {
	d := TranscriptData{
		SessionID: "sess-abc",
		Title:     "Build a todo app",
		Model:     "google/gemini-2.0-flash-lite-preview-02-05:free",
		Date:      time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC),
		Identity:  conversation.Identity{Email: "ana@example.com", DisplayName: "Ana"},
		Turns: []chat.Turn{
			{Role: conversation.RoleUser, Text: "build a todo app\nin react"},
			{Role: conversation.RoleAssistant, Segments: segment.Parse("### Plan\nUse **hooks**:\n```jsx\nuseState()\n```")},
		},
	}

	out := Transcript(d)

	checks := []string{
		"---\n",
		`session_id: "sess-abc"`,
		"date: 2026-02-22",
		"model: google/gemini-2.0-flash-lite-preview-02-05:free",
		`author: "Ana"`,
		"turns: 2",
		"# Build a todo app",
		"## You\n\n> build a todo app\n> in react",
		"## Assistant\n\n### Plan\nUse **hooks**:\n```jsx\nuseState()\n```",
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("missing %q in output:\n%s", c, out)
		}
	}
	if !strings.HasSuffix(out, "```\n") {
		t.Errorf("output should end with a single newline, got %q", out[len(out)-10:])
	}
}

func TestTranscript_MinimalFields(t *testing.T) {
	out := Transcript(TranscriptData{SessionID: "s1"})

	for _, absent := range []string{"date:", "model:", "author:"} {
		if strings.Contains(out, absent) {
			t.Errorf("unexpected %q in output:\n%s", absent, out)
		}
	}
	if !strings.Contains(out, "# "+conversation.DefaultTitle) {
		t.Errorf("missing default title:\n%s", out)
	}
	if !strings.Contains(out, "turns: 0") {
		t.Errorf("missing turn count:\n%s", out)
	}
}

func TestTranscript_YAMLEscape(t *testing.T) {
	out := Transcript(TranscriptData{
		SessionID: "s1",
		Identity:  conversation.Identity{Email: "a@b.c", DisplayName: `Ana "the dev" \o/`},
	})
	want := `author: "Ana \"the dev\" \\o/"`
	if !strings.Contains(out, want) {
		t.Errorf("missing %q in output:\n%s", want, out)
	}
}

func TestMarkdownSegments_RoundTrip(t *testing.T) {
	inputs := []string{
		"plain prose",
		"### Title\nbody with **bold** text",
		"intro\n```go\nfmt.Println(1)\n```\noutro",
		"**a****b**",
	}
	for _, in := range inputs {
		segs := segment.Parse(in)
		again := segment.Parse(MarkdownSegments(segs))
		if len(again) != len(segs) {
			t.Fatalf("round trip of %q: got %d segments, want %d", in, len(again), len(segs))
		}
		for i := range segs {
			if segs[i] != again[i] {
				t.Errorf("round trip of %q: segment %d = %#v, want %#v", in, i, again[i], segs[i])
			}
		}
	}
}

func TestQuote_BlankLines(t *testing.T) {
	got := quote("a\n\nb\n")
	want := "> a\n>\n> b"
	if got != want {
		t.Errorf("quote = %q, want %q", got, want)
	}
}

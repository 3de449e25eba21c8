package conversation

import (
	"strings"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    string
	}{
		{"no entries", nil, DefaultTitle},
		{"assistant only", []Entry{{Role: RoleAssistant, Content: "hello"}}, DefaultTitle},
		{"first line", []Entry{{Role: RoleUser, Content: "Build a REST API\nin Go please"}}, "Build a REST API"},
		{"trivial", []Entry{{Role: RoleUser, Content: "Hello!"}}, DefaultTitle},
		{"skips assistant", []Entry{
			{Role: RoleAssistant, Content: "welcome"},
			{Role: RoleUser, Content: "  sort a slice  "},
		}, "sort a slice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.entries); got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitle_Truncates(t *testing.T) {
	long := strings.Repeat("é", 100)
	got := Title([]Entry{{Role: RoleUser, Content: long}})
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := len([]rune(got)); n != 80 {
		t.Errorf("title has %d runes, want 80", n)
	}
}

package conversation

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/suykerbuyk/devflow/internal/segment"
)

func TestLog_AppendOrder(t *testing.T) {
	l := NewLog()
	if _, err := l.AppendUser("hi"); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	l.AppendAssistant("ok")

	got := l.Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Role != RoleUser || got[0].Content != "hi" {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Role != RoleAssistant || got[1].Content != "ok" {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

func TestLog_RejectsBlankSubmission(t *testing.T) {
	l := NewLog()
	l.AppendUser("first")

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := l.AppendUser(text)
		if !errors.Is(err, ErrEmptySubmission) {
			t.Errorf("AppendUser(%q) err = %v, want ErrEmptySubmission", text, err)
		}
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestLog_ContentUnmodified(t *testing.T) {
	l := NewLog()
	l.AppendUser("  padded  ")
	l.AppendAssistant("\n### raw\n")

	got := l.Entries()
	if got[0].Content != "  padded  " {
		t.Errorf("user content = %q", got[0].Content)
	}
	if got[1].Content != "\n### raw\n" {
		t.Errorf("assistant content = %q", got[1].Content)
	}
}

func TestLog_EntriesIsSnapshot(t *testing.T) {
	l := NewLog()
	l.AppendUser("hi")

	snap := l.Entries()
	snap[0].Content = "mutated"
	l.AppendAssistant("ok")

	got := l.Entries()
	if got[0].Content != "hi" {
		t.Errorf("prior entry changed to %q", got[0].Content)
	}
	if len(snap) != 1 {
		t.Errorf("snapshot grew to %d entries", len(snap))
	}
}

func TestLog_ConcurrentAppends(t *testing.T) {
	l := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.AppendAssistant(fmt.Sprintf("reply %d", i))
		}(i)
	}
	wg.Wait()

	if l.Len() != 50 {
		t.Errorf("Len = %d, want 50", l.Len())
	}
}

func TestRestore(t *testing.T) {
	src := []Entry{{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"}}
	l := Restore(src)
	src[0].Content = "changed"

	l.AppendUser("c")
	got := l.Entries()
	if len(got) != 3 || got[0].Content != "a" || got[2].Content != "c" {
		t.Errorf("restored entries = %+v", got)
	}
}

func TestEntry_Segments(t *testing.T) {
	user := Entry{Role: RoleUser, Content: "**not parsed**"}
	if segs := user.Segments(); segs != nil {
		t.Errorf("user entry segments = %v, want nil", segs)
	}

	asst := Entry{Role: RoleAssistant, Content: "**bold** tail"}
	segs := asst.Segments()
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if b, ok := segs[0].(segment.Bold); !ok || b.Content != "bold" {
		t.Errorf("segment 0 = %#v", segs[0])
	}
}

func TestIdentity(t *testing.T) {
	var anon Identity
	if anon.Present() {
		t.Error("zero identity should not be present")
	}

	id := Identity{Email: "ana@example.com"}
	if !id.Present() {
		t.Error("identity with email should be present")
	}
	if id.Name() != FallbackName {
		t.Errorf("Name = %q, want %q", id.Name(), FallbackName)
	}

	id.DisplayName = "ana lópez"
	if id.Name() != "ana lópez" {
		t.Errorf("Name = %q", id.Name())
	}
	if id.Initial() != "A" {
		t.Errorf("Initial = %q", id.Initial())
	}
}

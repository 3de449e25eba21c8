package segment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{"empty", "", nil},
		{"plain text", "just some prose\nover two lines", []Segment{
			Text{Content: "just some prose\nover two lines"},
		}},
		{"fence without language", "```\ncode\n```", []Segment{
			Code{Language: "javascript", Content: "code"},
		}},
		{"fence with language", "Here:\n```go\nfmt.Println(1)\n```\nDone.", []Segment{
			Text{Content: "Here:\n"},
			Code{Language: "go", Content: "fmt.Println(1)"},
			Text{Content: "\nDone."},
		}},
		{"fence content trimmed", "```py\n\n   x = 1  \n\n```", []Segment{
			Code{Language: "py", Content: "x = 1"},
		}},
		{"fence keeps inner backticks", "```sh\necho `date` ``\n```", []Segment{
			Code{Language: "sh", Content: "echo `date` ``"},
		}},
		{"fence closes at first marker", "```\na\n```b```", []Segment{
			Code{Language: "javascript", Content: "a"},
			Text{Content: "b```"},
		}},
		{"non-greedy bold", "**a** text **b**", []Segment{
			Bold{Content: "a"},
			Text{Content: " text "},
			Bold{Content: "b"},
		}},
		{"bold untrimmed", "** spaced **", []Segment{
			Bold{Content: " spaced "},
		}},
		{"bold cannot span lines", "**a\nb**", []Segment{
			Text{Content: "**a\nb**"},
		}},
		{"heading", "### Title\nbody", []Segment{
			Heading{Content: "Title"},
			Text{Content: "body"},
		}},
		{"heading without space", "###Title\n", []Segment{
			Heading{Content: "Title"},
		}},
		{"heading mid line", "intro ### Part\nrest", []Segment{
			Text{Content: "intro "},
			Heading{Content: "Part"},
			Text{Content: "rest"},
		}},
		{"heading skips blank lines", "###\n\nfoo\nbar", []Segment{
			Heading{Content: "foo"},
			Text{Content: "bar"},
		}},
		{"four hashes", "#### Deep\n", []Segment{
			Heading{Content: "# Deep"},
		}},
		{"heading needs line feed", "### Title", []Segment{
			Text{Content: "### Title"},
		}},
		{"heading with carriage return", "### Title\r\nbody", []Segment{
			Text{Content: "### Title\r\nbody"},
		}},
		{"unterminated fence", "```js\nfoo", []Segment{
			Text{Content: "```js\nfoo"},
		}},
		{"fence tag needs line feed", "``` js\nfoo\n```", []Segment{
			Text{Content: "``` js\nfoo\n```"},
		}},
		{"unclosed bold", "see **this and that", []Segment{
			Text{Content: "see **this and that"},
		}},
		{"bold inside unterminated fence", "```js\n**a** b", []Segment{
			Text{Content: "```js\n"},
			Bold{Content: "a"},
			Text{Content: " b"},
		}},
		{"markers inside fence stay code", "```md\n**x**\n### y\n```", []Segment{
			Code{Language: "md", Content: "**x**\n### y"},
		}},
		{"earliest match wins", "**b** ```\nc\n```", []Segment{
			Bold{Content: "b"},
			Text{Content: " "},
			Code{Language: "javascript", Content: "c"},
		}},
		{"adjacent matches emit no empty text", "**a****b**", []Segment{
			Bold{Content: "a"},
			Bold{Content: "b"},
		}},
		{"empty bold folds into text", "x **** y", []Segment{
			Text{Content: "x **** y"},
		}},
		{"empty fence folds into text", "a```\n```b **c**", []Segment{
			Text{Content: "a```\n```b "},
			Bold{Content: "c"},
		}},
		{"empty heading folds into text", "###\nplain", []Segment{
			Text{Content: "###\nplain"},
		}},
		{"whitespace-only fence", "```\n  \n```", []Segment{
			Code{Language: "javascript", Content: ""},
		}},
		{"mixed reply", "### Setup\nRun **npm i** then:\n```bash\nnpm start\n```\nThat's it.", []Segment{
			Heading{Content: "Setup"},
			Text{Content: "Run "},
			Bold{Content: "npm i"},
			Text{Content: " then:\n"},
			Code{Language: "bash", Content: "npm start"},
			Text{Content: "\nThat's it."},
		}},
		{"multibyte text", "héllo **wörld** ✓", []Segment{
			Text{Content: "héllo "},
			Bold{Content: "wörld"},
			Text{Content: " ✓"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestScan_SpansReconstructInput(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"**a** text **b**",
		"### Title\nbody",
		"```go\n  x := 1\n```\ntrailing",
		"x **** y ###\n``` ```\n```",
		"```js\n**a** b",
		"#### h\n**bold\nbroken** ```\ncode```",
		" ### x \n**y **",
	}

	for _, in := range inputs {
		tokens := Scan(in)
		var b strings.Builder
		prev := 0
		for i, tok := range tokens {
			if tok.Start != prev {
				t.Errorf("Scan(%q) token %d starts at %d, want %d", in, i, tok.Start, prev)
			}
			b.WriteString(in[tok.Start:tok.End])
			prev = tok.End
		}
		if b.String() != in {
			t.Errorf("Scan(%q) spans rebuild %q", in, b.String())
		}
	}
}

func TestScan_NoAdjacentText(t *testing.T) {
	tokens := Scan("a **** b ```\n``` d ###\n")
	for i := 1; i < len(tokens); i++ {
		if tokens[i-1].Segment.Kind() == KindText && tokens[i].Segment.Kind() == KindText {
			t.Errorf("tokens %d and %d are both text", i-1, i)
		}
	}
	if len(tokens) != 1 {
		t.Errorf("expected a single text token, got %d", len(tokens))
	}
}

func TestParse_NoMarkupIsSingleText(t *testing.T) {
	for _, in := range []string{"a", "one * two # three ` four", "## not quite\n", "``not a fence``"} {
		got := Parse(in)
		want := []Segment{Text{Content: in}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestSegment_MarshalJSON(t *testing.T) {
	segs := []Segment{
		Text{Content: "a"},
		Code{Language: "go", Content: "x"},
		Bold{Content: "b"},
		Heading{Content: "h"},
	}
	data, err := json.Marshal(segs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"type":"text","content":"a"},{"type":"code","language":"go","content":"x"},` +
		`{"type":"bold","content":"b"},{"type":"heading","content":"h"}]`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}

func TestKind_String(t *testing.T) {
	if KindHeading.String() != "heading" {
		t.Errorf("KindHeading = %q", KindHeading.String())
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("Kind(42) = %q", Kind(42).String())
	}
}

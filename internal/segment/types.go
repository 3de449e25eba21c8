package segment

import "encoding/json"

// DefaultLanguage is used for fenced blocks that carry no language tag.
const DefaultLanguage = "javascript"

// Kind identifies the type of a segment.
type Kind int

const (
	KindText Kind = iota
	KindCode
	KindBold
	KindHeading
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCode:
		return "code"
	case KindBold:
		return "bold"
	case KindHeading:
		return "heading"
	default:
		return "unknown"
	}
}

// Segment is one typed, contiguous unit of an assistant reply.
// The set of implementations is closed: Text, Code, Bold and Heading.
type Segment interface {
	Kind() Kind
	segment()
}

// Text is literal prose, rendered verbatim with whitespace preserved.
type Text struct {
	Content string
}

// Code is a fenced block. Content is trimmed of surrounding whitespace.
type Code struct {
	Language string
	Content  string
}

// Bold is an inline emphasis span.
type Bold struct {
	Content string
}

// Heading is a top-level heading span, without its marker or line break.
type Heading struct {
	Content string
}

func (Text) Kind() Kind    { return KindText }
func (Code) Kind() Kind    { return KindCode }
func (Bold) Kind() Kind    { return KindBold }
func (Heading) Kind() Kind { return KindHeading }

func (Text) segment()    {}
func (Code) segment()    {}
func (Bold) segment()    {}
func (Heading) segment() {}

// wireSegment is the JSON shape shared by all segment kinds.
type wireSegment struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

func (s Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSegment{Type: KindText.String(), Content: s.Content})
}

func (s Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSegment{Type: KindCode.String(), Language: s.Language, Content: s.Content})
}

func (s Bold) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSegment{Type: KindBold.String(), Content: s.Content})
}

func (s Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSegment{Type: KindHeading.String(), Content: s.Content})
}

// Token is a segment together with the byte span of the source it came from.
// For every input, concatenating raw[Start:End] over all tokens in order
// reproduces the input exactly.
type Token struct {
	Segment Segment
	Start   int
	End     int
}

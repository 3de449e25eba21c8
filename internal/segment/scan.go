// Package segment splits a model reply into typed, renderable segments.
//
// A reply may interleave plain prose, **bold** spans, "###" headings and
// fenced code blocks. Parse never fails: markup that does not close is
// left in the surrounding text.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	fenceMarker   = "```"
	boldMarker    = "**"
	headingMarker = "###"
)

// Parse returns the segments of raw in source order.
// An empty input yields no segments.
func Parse(raw string) []Segment {
	tokens := Scan(raw)
	if len(tokens) == 0 {
		return nil
	}
	segs := make([]Segment, len(tokens))
	for i, tok := range tokens {
		segs[i] = tok.Segment
	}
	return segs
}

// Scan walks raw left to right and returns one token per segment.
//
// At each position a fence is tried first, then bold, then heading; the
// earliest position with any match wins. Unmatched runs become Text.
// A match whose captured content is empty (for example "****") produces
// no typed segment; its span stays part of the surrounding text.
func Scan(raw string) []Token {
	var tokens []Token
	textStart := 0
	pos := 0

	for pos < len(raw) {
		next := strings.IndexAny(raw[pos:], "`*#")
		if next < 0 {
			break
		}
		pos += next

		m, ok := matchAt(raw, pos)
		if !ok {
			pos++
			continue
		}
		if m.seg == nil {
			pos = m.end
			continue
		}

		if pos > textStart {
			tokens = append(tokens, Token{Segment: Text{Content: raw[textStart:pos]}, Start: textStart, End: pos})
		}
		tokens = append(tokens, Token{Segment: m.seg, Start: pos, End: m.end})
		pos = m.end
		textStart = pos
	}

	if textStart < len(raw) {
		tokens = append(tokens, Token{Segment: Text{Content: raw[textStart:]}, Start: textStart, End: len(raw)})
	}
	return tokens
}

// match is a successful recognition at some position. seg is nil when the
// pattern matched but captured nothing.
type match struct {
	seg Segment
	end int
}

func matchAt(raw string, pos int) (match, bool) {
	if m, ok := matchFence(raw, pos); ok {
		return m, true
	}
	if m, ok := matchBold(raw, pos); ok {
		return m, true
	}
	return matchHeading(raw, pos)
}

// matchFence recognises ```lang\n ... ```. The tag is a run of word
// characters and must be followed directly by a line feed.
func matchFence(raw string, pos int) (match, bool) {
	if !strings.HasPrefix(raw[pos:], fenceMarker) {
		return match{}, false
	}

	tagStart := pos + len(fenceMarker)
	tagEnd := tagStart
	for tagEnd < len(raw) && isWordByte(raw[tagEnd]) {
		tagEnd++
	}
	if tagEnd >= len(raw) || raw[tagEnd] != '\n' {
		return match{}, false
	}

	bodyStart := tagEnd + 1
	closeAt := strings.Index(raw[bodyStart:], fenceMarker)
	if closeAt < 0 {
		return match{}, false
	}
	body := raw[bodyStart : bodyStart+closeAt]
	end := bodyStart + closeAt + len(fenceMarker)
	if body == "" {
		return match{end: end}, true
	}

	lang := raw[tagStart:tagEnd]
	if lang == "" {
		lang = DefaultLanguage
	}
	return match{
		seg: Code{Language: lang, Content: strings.TrimFunc(body, isSpace)},
		end: end,
	}, true
}

// matchBold recognises the shortest **...** span on a single line.
func matchBold(raw string, pos int) (match, bool) {
	if !strings.HasPrefix(raw[pos:], boldMarker) {
		return match{}, false
	}

	start := pos + len(boldMarker)
	closeAt := strings.Index(raw[start:], boldMarker)
	if closeAt < 0 {
		return match{}, false
	}
	content := raw[start : start+closeAt]
	if strings.IndexFunc(content, isLineTerminator) >= 0 {
		return match{}, false
	}

	end := start + closeAt + len(boldMarker)
	if content == "" {
		return match{end: end}, true
	}
	return match{seg: Bold{Content: content}, end: end}, true
}

// matchHeading recognises "###", optional whitespace, then the rest of the
// line through its line feed. The whitespace run is consumed greedily and
// given back one rune at a time until the remainder reaches a line feed
// without crossing another line terminator.
func matchHeading(raw string, pos int) (match, bool) {
	if !strings.HasPrefix(raw[pos:], headingMarker) {
		return match{}, false
	}

	bounds := []int{pos + len(headingMarker)}
	for p := bounds[0]; p < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[p:])
		if !isSpace(r) {
			break
		}
		p += size
		bounds = append(bounds, p)
	}

	last := len(bounds) - 1
	term := -1
	if i := strings.IndexFunc(raw[bounds[last]:], isLineTerminator); i >= 0 {
		term = bounds[last] + i
	}

	for j := last; j >= 0; j-- {
		if j < last {
			if r, _ := utf8.DecodeRuneInString(raw[bounds[j]:]); isLineTerminator(r) {
				term = bounds[j]
			}
		}
		if term < 0 || raw[term] != '\n' {
			continue
		}
		content := raw[bounds[j]:term]
		if content == "" {
			return match{end: term + 1}, true
		}
		return match{seg: Heading{Content: content}, end: term + 1}, true
	}
	return match{}, false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// isSpace reports whitespace as recognised by the reply format: Unicode
// spaces and line terminators plus the byte order mark, but not NEL.
func isSpace(r rune) bool {
	if r == '\ufeff' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

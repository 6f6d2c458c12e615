package guide

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind is the classification of a single guide line.
type Kind int

const (
	KindBlank Kind = iota
	KindHeading
	KindOrderedItem
	KindUnorderedItem
	KindBold
	KindParagraph
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindHeading:
		return "heading"
	case KindOrderedItem:
		return "ordered"
	case KindUnorderedItem:
		return "unordered"
	case KindBold:
		return "bold"
	case KindParagraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Line is a classified line: its kind and the content left after the marker.
type Line struct {
	Kind Kind
	Text string
}

const (
	headingPrefix   = "### "
	unorderedPrefix = "* "
	boldMarker      = "**"
)

// orderedPrefix accepts any Unicode space after the dot, so full-width
// (U+3000) and no-break spaces in Japanese guides still start an item.
var orderedPrefix = regexp.MustCompile(`^\d+\.[\s\p{Z}\x{0085}\x{FEFF}]`)

// isSpace matches the whitespace trimmed from each line, BOM included.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// rule reports whether it claims the trimmed line and, if so, the content.
type rule struct {
	kind  Kind
	match func(trimmed string) (string, bool)
}

// rules are evaluated top to bottom; the first match wins.
var rules = []rule{
	{KindBlank, func(s string) (string, bool) {
		return "", s == ""
	}},
	{KindHeading, func(s string) (string, bool) {
		return strings.CutPrefix(s, headingPrefix)
	}},
	{KindOrderedItem, func(s string) (string, bool) {
		loc := orderedPrefix.FindStringIndex(s)
		if loc == nil {
			return "", false
		}
		return s[loc[1]:], true
	}},
	{KindUnorderedItem, func(s string) (string, bool) {
		return strings.CutPrefix(s, unorderedPrefix)
	}},
	{KindBold, func(s string) (string, bool) {
		if len(s) < 2*len(boldMarker) || !strings.HasPrefix(s, boldMarker) || !strings.HasSuffix(s, boldMarker) {
			return "", false
		}
		return s[len(boldMarker) : len(s)-len(boldMarker)], true
	}},
	{KindParagraph, func(s string) (string, bool) {
		return s, true
	}},
}

// Classify trims raw and returns the first matching rule's result.
func Classify(raw string) Line {
	trimmed := strings.TrimFunc(raw, isSpace)
	for _, r := range rules {
		if text, ok := r.match(trimmed); ok {
			return Line{Kind: r.kind, Text: text}
		}
	}
	return Line{Kind: KindParagraph, Text: trimmed}
}

// Package guide renders exercise beginner guides, written in a small
// line-oriented Markdown subset, into HTML fragments.
//
// Supported lines: "### " headings, "1. " ordered items, "* " unordered
// items, whole-line "**bold**" paragraphs and plain paragraphs. Blank lines
// close an open list. There is no nesting and no inline markup.
//
// Content is emitted verbatim unless Options.Escape is set; callers that
// display untrusted guides must opt in to escaping.
package guide

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	OrderedOpen    = `<ol class="guide-list guide-list-ordered">`
	OrderedClose   = `</ol>`
	UnorderedOpen  = `<ul class="guide-list guide-list-unordered">`
	UnorderedClose = `</ul>`
)

// Options tune rendering.
type Options struct {
	// Escape HTML-escapes line content before wrapping it.
	Escape bool
}

type listState int

const (
	listNone listState = iota
	listOrdered
	listUnordered
)

type renderer struct {
	b     strings.Builder
	state listState
	opts  Options
}

// Render converts text to HTML without escaping its content.
func Render(text string) string {
	return RenderWith(text, Options{})
}

// RenderPtr treats a nil guide as empty.
func RenderPtr(text *string) string {
	if text == nil {
		return ""
	}
	return Render(*text)
}

// RenderWith converts text to HTML using opts.
func RenderWith(text string, opts Options) string {
	if text == "" {
		return ""
	}
	r := &renderer{opts: opts}
	for _, raw := range strings.Split(text, "\n") {
		r.line(Classify(raw))
	}
	r.closeList()
	return r.b.String()
}

func (r *renderer) line(l Line) {
	switch l.Kind {
	case KindHeading:
		r.closeList()
		r.wrap("<h4>", l.Text, "</h4>")
	case KindOrderedItem:
		r.openList(listOrdered)
		r.wrap("<li>", l.Text, "</li>")
	case KindUnorderedItem:
		r.openList(listUnordered)
		r.wrap("<li>", l.Text, "</li>")
	case KindBold:
		r.closeList()
		r.wrap("<p><strong>", l.Text, "</strong></p>")
	case KindParagraph:
		r.closeList()
		r.wrap("<p>", l.Text, "</p>")
	case KindBlank:
		r.closeList()
	}
}

func (r *renderer) wrap(open, text, close string) {
	if r.opts.Escape {
		text = html.EscapeString(text)
	}
	r.b.WriteString(open)
	r.b.WriteString(text)
	r.b.WriteString(close)
}

// openList switches to want, closing a list of the other kind first.
func (r *renderer) openList(want listState) {
	if r.state == want {
		return
	}
	r.closeList()
	switch want {
	case listOrdered:
		r.b.WriteString(OrderedOpen)
	case listUnordered:
		r.b.WriteString(UnorderedOpen)
	}
	r.state = want
}

func (r *renderer) closeList() {
	switch r.state {
	case listOrdered:
		r.b.WriteString(OrderedClose)
	case listUnordered:
		r.b.WriteString(UnorderedClose)
	}
	r.state = listNone
}

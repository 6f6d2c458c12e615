package guide

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(""))
	assert.Equal(t, "", RenderPtr(nil))
	s := ""
	assert.Equal(t, "", RenderPtr(&s))
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "### Title", "<h4>Title</h4>"},
		{"ordered", "1. a\n2. b", OrderedOpen + "<li>a</li><li>b</li>" + OrderedClose},
		{"unordered", "* a\n* b", UnorderedOpen + "<li>a</li><li>b</li>" + UnorderedClose},
		{"bold", "**Bold**", "<p><strong>Bold</strong></p>"},
		{"bold marker only", "**", "<p>**</p>"},
		{"three stars", "***", "<p>***</p>"},
		{"empty bold", "****", "<p><strong></strong></p>"},
		{"plain", "  just text  ", "<p>just text</p>"},
		{"heading without space", "###Title", "<p>###Title</p>"},
		{"ordered multi digit", "12. twelve", OrderedOpen + "<li>twelve</li>" + OrderedClose},
		{"ordered without space", "1.a", "<p>1.a</p>"},
		{"star without space", "*a", "<p>*a</p>"},
		{
			"list kind switch",
			"1. a\n* b",
			OrderedOpen + "<li>a</li>" + OrderedClose + UnorderedOpen + "<li>b</li>" + UnorderedClose,
		},
		{
			"blank separates paragraph and heading",
			"plain\n\n### H",
			"<p>plain</p><h4>H</h4>",
		},
		{
			"blank splits same-kind list",
			"* a\n\n* b",
			UnorderedOpen + "<li>a</li>" + UnorderedClose + UnorderedOpen + "<li>b</li>" + UnorderedClose,
		},
		{
			"paragraph closes list",
			"1. a\ntext\n2. b",
			OrderedOpen + "<li>a</li>" + OrderedClose + "<p>text</p>" + OrderedOpen + "<li>b</li>" + OrderedClose,
		},
		{
			"heading wins over list markers",
			"### 1. step",
			"<h4>1. step</h4>",
		},
		{
			"ordered wins over bold",
			"1. **x**",
			OrderedOpen + "<li>**x**</li>" + OrderedClose,
		},
		{
			"indented items are trimmed",
			"   * a\n\t2. b",
			UnorderedOpen + "<li>a</li>" + UnorderedClose + OrderedOpen + "<li>b</li>" + OrderedClose,
		},
		{"whitespace only", " \n\t\n", ""},
		{"crlf", "### H\r\n* a\r\n", "<h4>H</h4>" + UnorderedOpen + "<li>a</li>" + UnorderedClose},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Render(tc.in))
		})
	}
}

func TestRenderDoesNotEscape(t *testing.T) {
	got := Render("a <b> & c\n* <i>x</i>\n### 1 < 2")
	assert.Equal(t, "<p>a <b> & c</p>"+UnorderedOpen+"<li><i>x</i></li>"+UnorderedClose+"<h4>1 < 2</h4>", got)
}

func TestRenderWithEscape(t *testing.T) {
	got := RenderWith("a <b> & c\n**<x>**", Options{Escape: true})
	assert.Equal(t, "<p>a &lt;b&gt; &amp; c</p><p><strong>&lt;x&gt;</strong></p>", got)
}

func TestRenderDeterministic(t *testing.T) {
	in := "### Warm up\n1. Stand tall\n2. Roll shoulders\n* Breathe\n**Stop if it hurts**\nDone"
	first := Render(in)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, first, Render(in))
		}()
	}
	wg.Wait()
}

// Every open tag in the output must be closed in order.
func TestRenderWellFormed(t *testing.T) {
	in := "### A\n1. one\n* two\n3. three\n\n**b**\ntext\n* last"
	z := html.NewTokenizer(strings.NewReader(Render(in)))
	var stack []string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		name, _ := z.TagName()
		switch tt {
		case html.StartTagToken:
			stack = append(stack, string(name))
		case html.EndTagToken:
			require.NotEmpty(t, stack, "unexpected </%s>", name)
			require.Equal(t, stack[len(stack)-1], string(name))
			stack = stack[:len(stack)-1]
		}
	}
	assert.Empty(t, stack)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Line
	}{
		{"", Line{Kind: KindBlank}},
		{"   ", Line{Kind: KindBlank}},
		{"### H", Line{Kind: KindHeading, Text: "H"}},
		{"### * x", Line{Kind: KindHeading, Text: "* x"}},
		{"3. c", Line{Kind: KindOrderedItem, Text: "c"}},
		{"3.\tc", Line{Kind: KindOrderedItem, Text: "c"}},
		{"1.\u3000手順", Line{Kind: KindOrderedItem, Text: "手順"}},
		{"2.\u00a0x", Line{Kind: KindOrderedItem, Text: "x"}},
		{"1.x", Line{Kind: KindParagraph, Text: "1.x"}},
		{"\u3000* 全角", Line{Kind: KindUnorderedItem, Text: "全角"}},
		{"\ufeff### BOM", Line{Kind: KindHeading, Text: "BOM"}},
		{"* u", Line{Kind: KindUnorderedItem, Text: "u"}},
		{"**b**", Line{Kind: KindBold, Text: "b"}},
		{"** b **", Line{Kind: KindBold, Text: " b "}},
		{"**", Line{Kind: KindParagraph, Text: "**"}},
		{" p ", Line{Kind: KindParagraph, Text: "p"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(tc.in), "input %q", tc.in)
	}
}

func TestRenderFullWidthOrderedItems(t *testing.T) {
	got := Render("1.\u3000手順\n2.\u00a0肩を回す")
	assert.Equal(t, OrderedOpen+"<li>手順</li><li>肩を回す</li>"+OrderedClose, got)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "heading", KindHeading.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

package render

import (
	"html"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text unchanged",
			in:   "Hello World!",
			want: "Hello World!",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "tags are escaped",
			in:   "<p>Hello World</p>",
			want: "&lt;p&gt;Hello World&lt;/p&gt;",
		},
		{
			name: "attribute quotes are kept",
			in:   "<p class='foo'>Hello World</p>",
			want: "&lt;p class='foo'&gt;Hello World&lt;/p&gt;",
		},
		{
			name: "ampersand",
			in:   "Fish & Chips",
			want: "Fish &amp; Chips",
		},
		{
			name: "existing entity is escaped once",
			in:   "a &lt; b",
			want: "a &amp;lt; b",
		},
		{
			name: "link",
			in:   "<p>Hello World http://example.org/ is it</p>",
			want: "&lt;p&gt;Hello World <a href='http://example.org/'>http://example.org/</a> is it&lt;/p&gt;",
		},
		{
			name: "link with path",
			in:   "<p>Hello World http://example.org/home_page.html is it</p>",
			want: "&lt;p&gt;Hello World <a href='http://example.org/home_page.html'>http://example.org/home_page.html</a> is it&lt;/p&gt;",
		},
		{
			name: "https link at end",
			in:   "see https://example.org/a?b=1",
			want: "see <a href='https://example.org/a?b=1'>https://example.org/a?b=1</a>",
		},
		{
			name: "ampersand inside link",
			in:   "http://example.org/?a=1&b=2",
			want: "<a href='http://example.org/?a=1&amp;b=2'>http://example.org/?a=1&amp;b=2</a>",
		},
		{
			name: "link stops at angle bracket",
			in:   "http://example.org/<b>",
			want: "<a href='http://example.org/'>http://example.org/</a>&lt;b&gt;",
		},
		{
			name: "bare scheme is not a link",
			in:   "http:// nothing",
			want: "http:// nothing",
		},
		{
			name: "sentence-final period after link",
			in:   "see http://a.com/x.html. ok",
			want: "see <a href='http://a.com/x.html'>http://a.com/x.html</a>. ok",
		},
		{
			name: "trailing periods after link",
			in:   "http://a.com/...",
			want: "<a href='http://a.com/'>http://a.com/</a>...",
		},
		{
			name: "internal periods stay in link",
			in:   "http://a.b.com/x.y",
			want: "<a href='http://a.b.com/x.y'>http://a.b.com/x.y</a>",
		},
		{
			name: "scheme followed only by a period",
			in:   "http://.",
			want: "http://.",
		},
		{
			name: "invalid utf-8 is replaced",
			in:   "\xff@bad",
			want: "\uFFFD<a href='/users/bad'>@bad</a>",
		},
		{
			name: "invalid utf-8 inside text",
			in:   "a\xc3b",
			want: "a\uFFFDb",
		},
		{
			name: "mention",
			in:   "<p>Hello World @Bobolooba</p>",
			want: "&lt;p&gt;Hello World <a href='/users/Bobolooba'>@Bobolooba</a>&lt;/p&gt;",
		},
		{
			name: "internal period is part of the name",
			in:   "<p>Hello World @steve.cassidy</p>",
			want: "&lt;p&gt;Hello World <a href='/users/steve.cassidy'>@steve.cassidy</a>&lt;/p&gt;",
		},
		{
			name: "internal period without tags",
			in:   "Hello World @steve.cassidy",
			want: "Hello World <a href='/users/steve.cassidy'>@steve.cassidy</a>",
		},
		{
			name: "final period is not part of the name",
			in:   "Hello World @Cat.",
			want: "Hello World <a href='/users/Cat'>@Cat</a>.",
		},
		{
			name: "final period followed by space",
			in:   "Hello World @Cat. Hi!",
			want: "Hello World <a href='/users/Cat'>@Cat</a>. Hi!",
		},
		{
			name: "mention alone with period",
			in:   "@Cat.",
			want: "<a href='/users/Cat'>@Cat</a>.",
		},
		{
			name: "double period ends the name",
			in:   "@a..b",
			want: "<a href='/users/a'>@a</a>..b",
		},
		{
			name: "underscore and digits",
			in:   "hi @jim_2!",
			want: "hi <a href='/users/jim_2'>@jim_2</a>!",
		},
		{
			name: "lone at sign",
			in:   "meet @ noon",
			want: "meet @ noon",
		},
		{
			name: "at sign inside a link stays in the link",
			in:   "http://example.org/@Cat",
			want: "<a href='http://example.org/@Cat'>http://example.org/@Cat</a>",
		},
		{
			name: "link and mention together",
			in:   "@Bean read http://example.org/ & tell @Contrary.",
			want: "<a href='/users/Bean'>@Bean</a> read <a href='http://example.org/'>http://example.org/</a> &amp; tell <a href='/users/Contrary'>@Contrary</a>.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTML(tt.in))
		})
	}
}

func TestHTML(t *testing.T) {
	assert.Equal(t, "Fish &amp; Chips", string(HTML("Fish & Chips")))
}

func TestToHTMLProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1337)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// Property: text with nothing to link is only escaped, and unescaping
	// gives back the original.
	properties.Property("unlinked text round-trips through escaping", prop.ForAll(
		func(s string) bool {
			if strings.Contains(s, "@") || strings.Contains(strings.ToLower(s), "http") {
				return true
			}
			out := ToHTML(s)
			return !strings.ContainsAny(out, "<>") && html.UnescapeString(out) == s
		},
		gen.AnyString(),
	))

	// Property: a bare mention links to the user page, with or without a
	// sentence-final period.
	properties.Property("mentions link to the user page", prop.ForAll(
		func(name string) bool {
			want := "<a href='/users/" + name + "'>@" + name + "</a>"
			return ToHTML("@"+name) == want && ToHTML("@"+name+".") == want+"."
		},
		gen.Identifier(),
	))

	// Property: output is valid UTF-8 whatever bytes come in.
	properties.Property("output is valid utf-8", prop.ForAll(
		func(bs []byte) bool {
			return utf8.ValidString(ToHTML(string(bs)))
		},
		gen.SliceOf(gen.UInt8()),
	))

	// Property: rendering is deterministic.
	properties.Property("same input, same output", prop.ForAll(
		func(s string) bool {
			return ToHTML(s) == ToHTML(s)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

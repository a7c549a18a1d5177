// Package render turns the raw text of a post into HTML that is safe to
// embed in a page.
//
// The input is scanned once, left to right, and split into three kinds of
// span:
//
//	plain   → HTML-escaped
//	url     → <a href='URL'>URL</a>
//	mention → <a href='/users/NAME'>@NAME</a>
//
// Every byte of input lands in exactly one span and is escaped exactly once,
// so generated anchors are never re-escaped or wrapped twice.
package render

import (
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UserPathPrefix is where a mention links to; the name is appended.
const UserPathPrefix = "/users/"

// escaper handles the characters that can change HTML structure in element
// content. Quotes are left alone: post text never lands inside an attribute
// except through a URL or mention span, and neither can contain a quote.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var schemes = []string{"http://", "https://"}

// ToHTML renders text as escaped HTML with URLs and @mentions linked.
// It is a pure function.
//
// Invalid UTF-8 is replaced with U+FFFD first, so the output is always
// valid UTF-8.
func ToHTML(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")

	var b strings.Builder
	b.Grow(len(text))

	plain := 0 // start of the pending plain span
	for i := 0; i < len(text); {
		if n := urlLen(text[i:]); n > 0 {
			escaper.WriteString(&b, text[plain:i])
			writeAnchor(&b, text[i:i+n], text[i:i+n])
			i += n
			plain = i
			continue
		}

		if text[i] == '@' {
			if n := nameLen(text[i+1:]); n > 0 {
				name := text[i+1 : i+1+n]
				escaper.WriteString(&b, text[plain:i])
				writeAnchor(&b, UserPathPrefix+name, "@"+name)
				i += 1 + n
				plain = i
				continue
			}
		}

		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	escaper.WriteString(&b, text[plain:])

	return b.String()
}

// HTML is ToHTML typed for html/template, which will then insert it verbatim.
func HTML(text string) template.HTML {
	return template.HTML(ToHTML(text))
}

func writeAnchor(b *strings.Builder, href, label string) {
	b.WriteString("<a href='")
	escaper.WriteString(b, href)
	b.WriteString("'>")
	escaper.WriteString(b, label)
	b.WriteString("</a>")
}

// urlLen returns the length of the URL starting at s[0], or 0 if there is none.
func urlLen(s string) int {
	for _, scheme := range schemes {
		if len(s) < len(scheme) || !strings.EqualFold(s[:len(scheme)], scheme) {
			continue
		}
		n := len(scheme)
		for n < len(s) && isURLByte(s[n]) {
			n++
		}
		// As with mentions, a period only belongs to the URL when more URL
		// characters follow it, so a sentence-final period stays text.
		for n > len(scheme) && s[n-1] == '.' {
			n--
		}
		if n == len(scheme) {
			return 0
		}
		return n
	}
	return 0
}

// isURLByte reports whether c may appear in a linked URL. Whitespace,
// quotes and angle brackets all end a URL.
func isURLByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~:/?#[]@!$&()*+,;=%", c) >= 0
}

// nameLen returns the length of the nick at the start of s, or 0.
//
// A nick is a run of letters, digits and underscores. A period belongs to
// it only when another name character follows, so "@Cat." stops before the
// period while "@steve.cassidy" keeps it.
func nameLen(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isNameRune(r) {
			i += size
			n = i
			continue
		}
		if r == '.' && n > 0 && i+1 < len(s) {
			if next, _ := utf8.DecodeRuneInString(s[i+1:]); isNameRune(next) {
				i++
				continue
			}
		}
		return n
	}
	return n
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Package compose builds social posts under a hard platform character
// limit. All length arithmetic counts Unicode code points
// (utf8.RuneCountInString), never bytes. Multi-codepoint emoji sequences
// count as several points; the layout safety buffer keeps the final length
// far enough below the platform limit to absorb the difference against
// platform-side width counting.
package compose

import (
	"strings"
	"unicode/utf8"
)

const (
	// PlatformLimit is the maximum rendered post length.
	PlatformLimit = 280

	// RenderedLinkLength is the fixed on-platform character cost of any
	// URL after platform-side shortening, regardless of its actual length.
	RenderedLinkLength = 23

	// DefaultSafetyBuffer is the character margin held back from the
	// platform limit when no explicit buffer is configured.
	DefaultSafetyBuffer = 6

	separator = "\n\n"
	ellipsis  = "..."

	// Body length strictly decreases every truncation pass, so a handful
	// of passes always suffices.
	maxTruncatePasses = 4
)

// Layout holds the fixed structural pieces of a post. The body slots in
// between Header and Link; parts are joined with blank lines in a constant
// order so the budget computed up front matches the assembled result.
type Layout struct {
	Header string
	Link   string
	Suffix string // trailing hashtag line

	// Buffer is the safety margin below PlatformLimit. Zero means
	// DefaultSafetyBuffer.
	Buffer int
}

// Post is a final assembled post and its rendered length in code points.
type Post struct {
	Text   string
	Length int
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func (l Layout) buffer() int {
	if l.Buffer <= 0 {
		return DefaultSafetyBuffer
	}
	return l.Buffer
}

// effectiveLimit is the rendered length the assembled post must not exceed.
// Enforcing the limit minus the buffer (rather than the bare limit) is what
// makes the buffer actually protective when body text is AI-generated.
func (l Layout) effectiveLimit() int {
	return PlatformLimit - l.buffer()
}

type part struct {
	text   string
	isLink bool
}

// parts returns the non-empty structural pieces with the given body slotted
// in, in assembly order.
func (l Layout) parts(body string) []part {
	all := []part{{text: l.Header}, {text: body}, {text: l.Link, isLink: true}, {text: l.Suffix}}
	var out []part
	for _, p := range all {
		if p.text != "" {
			out = append(out, p)
		}
	}
	return out
}

// renderedLength computes the on-platform length of the assembled post:
// every part costs its code-point count except the link, which always costs
// RenderedLinkLength.
func (l Layout) renderedLength(body string) int {
	total := 0
	for i, p := range l.parts(body) {
		if i > 0 {
			total += runeLen(separator)
		}
		if p.isLink {
			total += RenderedLinkLength
			continue
		}
		total += runeLen(p.text)
	}
	return total
}

// Budget returns the maximum body length, in code points, that fits this
// layout: the effective limit minus the rendered cost of every structural
// piece and the blank lines joining them. Never negative.
func (l Layout) Budget() int {
	// A one-rune placeholder stands in for the body so the separators
	// around it are counted.
	b := l.effectiveLimit() - l.renderedLength("\x00") + 1
	if b < 0 {
		return 0
	}
	return b
}

// Compose assembles header, body, link and suffix into a single post whose
// rendered length never exceeds PlatformLimit. An over-budget body is
// truncated; the overflow is always measured on the fully-assembled post,
// never estimated from the body alone.
func (l Layout) Compose(body string) Post {
	body = strings.TrimRight(body, "\n ")

	for pass := 0; pass < maxTruncatePasses; pass++ {
		rendered := l.renderedLength(body)
		over := rendered - l.effectiveLimit()
		if over <= 0 {
			return Post{Text: l.assemble(body), Length: rendered}
		}
		body = shrinkBody(body, runeLen(body)-over)
	}

	// Passes exhausted: the structural pieces alone exceed the limit, so
	// shrinking the body cannot help. Headers carry upstream entry titles
	// verbatim, so this is reachable with a long enough release title.
	body = truncateRunes(body, l.Budget())
	if rendered := l.renderedLength(body); rendered <= l.effectiveLimit() {
		return Post{Text: l.assemble(body), Length: rendered}
	}

	// Clamp the assembled text itself. This can cut through structure
	// (including the link), but an over-limit post is rejected by every
	// platform and would wedge the stream.
	text := truncateRunes(l.assemble(body), l.effectiveLimit())
	return Post{Text: text, Length: runeLen(text)}
}

func (l Layout) assemble(body string) string {
	var b strings.Builder
	for i, p := range l.parts(body) {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(p.text)
	}
	return b.String()
}

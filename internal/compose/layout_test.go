package compose

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func repeatRunes(r string, n int) string {
	return strings.Repeat(r, n)
}

func TestBudget_ScenarioNumbers(t *testing.T) {
	// header 40, rendered link 23, hashtag 18, three blank-line joins (6),
	// buffer 6: 280-40-23-18-6-6 = 187.
	l := Layout{
		Header: repeatRunes("h", 40),
		Link:   "https://example.com/releases/v1.2.3",
		Suffix: repeatRunes("#", 18),
		Buffer: 6,
	}

	if got := l.Budget(); got != 187 {
		t.Fatalf("Budget() = %d, want 187", got)
	}

	// A body of exactly the budget is not truncated.
	body := repeatRunes("b", 187)
	post := l.Compose(body)
	if !strings.Contains(post.Text, body) {
		t.Error("body at exactly the budget should survive untouched")
	}
	if post.Length > PlatformLimit {
		t.Errorf("Length = %d, exceeds platform limit", post.Length)
	}

	// One character over the budget triggers truncation and still fits.
	over := repeatRunes("b", 188)
	post = l.Compose(over)
	if strings.Contains(post.Text, over) {
		t.Error("body one over the budget should have been truncated")
	}
	if post.Length > PlatformLimit {
		t.Errorf("Length = %d, exceeds platform limit", post.Length)
	}
}

func TestCompose_LengthInvariant(t *testing.T) {
	layouts := []Layout{
		{Header: "🚀 Tool v1.0 is out!", Link: "https://example.com/r/v1", Suffix: "#Tool"},
		{Header: repeatRunes("h", 120), Link: "https://example.com", Suffix: repeatRunes("#", 40), Buffer: 4},
		{Header: "", Link: "", Suffix: ""},
		{Header: repeatRunes("🚀", 80), Link: "https://example.com", Suffix: "#x", Buffer: 8},
		{Header: repeatRunes("H", 400), Suffix: repeatRunes("#", 50)},
		{Header: repeatRunes("H", 300), Link: "https://example.com/r/v1", Suffix: "#Tool"},
	}
	bodies := []string{
		"",
		"short body",
		repeatRunes("x", 500),
		repeatRunes("🎉", 400),
		"• one\n• two\n• three\n...and 7 more",
		strings.Repeat("• a very long feature bullet line describing something\n", 20) + "...and 12 more",
	}

	for _, l := range layouts {
		for _, body := range bodies {
			post := l.Compose(body)
			if post.Length > PlatformLimit {
				t.Errorf("layout %q/%q body %d runes: Length = %d, exceeds %d",
					l.Header, l.Suffix, utf8.RuneCountInString(body), post.Length, PlatformLimit)
			}
			// Rendered length and actual length differ only by the link
			// discount; the actual text must also respect the limit once
			// the link cost is normalized. An oversized layout may clamp
			// the text mid-link, in which case the raw length is the
			// rendered length.
			actual := utf8.RuneCountInString(post.Text)
			if l.Link != "" && strings.Contains(post.Text, l.Link) {
				actual = actual - utf8.RuneCountInString(l.Link) + RenderedLinkLength
			}
			if actual != post.Length {
				t.Errorf("rendered length %d does not match normalized actual %d", post.Length, actual)
			}
		}
	}
}

func TestCompose_StructuralOrder(t *testing.T) {
	l := Layout{
		Header: "🚀 Tool v2.0 is out!",
		Link:   "https://example.com/r/v2",
		Suffix: "#Tool",
	}
	post := l.Compose("• feature one\n• feature two")

	want := "🚀 Tool v2.0 is out!\n\n• feature one\n• feature two\n\nhttps://example.com/r/v2\n\n#Tool"
	if post.Text != want {
		t.Errorf("Compose text:\n%q\nwant:\n%q", post.Text, want)
	}
}

func TestCompose_EmptyBodyOmitsSeparator(t *testing.T) {
	l := Layout{Header: "header", Link: "https://example.com", Suffix: "#tag"}
	post := l.Compose("")
	want := "header\n\nhttps://example.com\n\n#tag"
	if post.Text != want {
		t.Errorf("Compose text = %q, want %q", post.Text, want)
	}
}

func TestCompose_BodyLongerThanEntireLimit(t *testing.T) {
	l := Layout{Header: "🚀 Tool v1.0 is out!", Link: "https://example.com/r/v1", Suffix: "#Tool"}
	post := l.Compose(repeatRunes("z", PlatformLimit*3))
	if post.Length > PlatformLimit {
		t.Errorf("Length = %d, exceeds %d", post.Length, PlatformLimit)
	}
	if !strings.Contains(post.Text, ellipsis) {
		t.Error("hard-truncated body should end with an ellipsis")
	}
}

func TestCompose_OversizedHeaderStillClamped(t *testing.T) {
	// Headers embed upstream entry titles verbatim, so a layout whose
	// structural pieces alone exceed the limit is reachable from a long
	// release title. The assembled post must still fit.
	l := Layout{Header: "🚀 Tool " + repeatRunes("x", 300) + " is out!", Suffix: "#Tool"}
	post := l.Compose("• a feature")

	if post.Length > PlatformLimit {
		t.Errorf("Length = %d, exceeds %d", post.Length, PlatformLimit)
	}
	if n := utf8.RuneCountInString(post.Text); n > PlatformLimit {
		t.Errorf("assembled text is %d runes, exceeds %d", n, PlatformLimit)
	}
	if n := utf8.RuneCountInString(post.Text); n != post.Length {
		t.Errorf("Length = %d, but text is %d runes", post.Length, n)
	}
}

func TestCompose_OversizedSuffixStillClamped(t *testing.T) {
	l := Layout{Header: "🚀 Tool v1.0 is out!", Link: "https://example.com/r/v1", Suffix: repeatRunes("#", 400)}
	post := l.Compose("• a feature")

	if post.Length > PlatformLimit {
		t.Errorf("Length = %d, exceeds %d", post.Length, PlatformLimit)
	}
	if n := utf8.RuneCountInString(post.Text); n > PlatformLimit {
		t.Errorf("assembled text is %d runes, exceeds %d", n, PlatformLimit)
	}
}

func TestCompose_EmojiOnlyBody(t *testing.T) {
	l := Layout{Header: "h", Link: "https://example.com", Suffix: "#t"}
	post := l.Compose(repeatRunes("🎉", 600))
	if post.Length > PlatformLimit {
		t.Errorf("Length = %d, exceeds %d", post.Length, PlatformLimit)
	}
}

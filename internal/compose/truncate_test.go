package compose

import (
	"strings"
	"testing"

	"github.com/ptkhanh/herald/internal/models"
)

func TestParseMoreIndicator(t *testing.T) {
	tests := []struct {
		line   string
		wantN  int
		wantOK bool
	}{
		{"...and 7 more", 7, true},
		{"...and 123 more", 123, true},
		{"  ...and 2 more  ", 2, true},
		{"...and more", 0, false},
		{"and 7 more", 0, false},
		{"• normal bullet", 0, false},
	}

	for _, tt := range tests {
		n, ok := parseMoreIndicator(tt.line)
		if ok != tt.wantOK || n != tt.wantN {
			t.Errorf("parseMoreIndicator(%q) = (%d, %v), want (%d, %v)",
				tt.line, n, ok, tt.wantN, tt.wantOK)
		}
	}
}

func TestShrinkBody_PreservesIndicator(t *testing.T) {
	body := strings.Join([]string{
		"• first feature with a reasonably long description",
		"• second feature with a reasonably long description",
		"• third feature with a reasonably long description",
		"...and 4 more",
	}, "\n")

	shrunk := shrinkBody(body, 120)
	if runeLen(shrunk) > 120 {
		t.Fatalf("shrunk body is %d runes, want <= 120", runeLen(shrunk))
	}

	lines := strings.Split(shrunk, "\n")
	n, ok := parseMoreIndicator(lines[len(lines)-1])
	if !ok {
		t.Fatalf("shrunk body lost the more-indicator: %q", shrunk)
	}
	// One whole line was removed, so the count grows from 4 to 5.
	if n != 5 {
		t.Errorf("indicator count = %d, want 5 (4 original + 1 removed line)", n)
	}
	if lines[0] != "• first feature with a reasonably long description" {
		t.Errorf("surviving line was altered: %q", lines[0])
	}
}

func TestShrinkBody_WholeLinesOnly(t *testing.T) {
	body := "• aaaa\n• bbbb\n• cccc\n...and 1 more"

	// A budget that fits two bullets plus the indicator but cuts the third
	// mid-line must drop the third bullet entirely.
	shrunk := shrinkBody(body, runeLen(body)-3)
	for _, line := range strings.Split(shrunk, "\n") {
		if _, ok := parseMoreIndicator(line); ok {
			continue
		}
		if !strings.HasPrefix(line, "• ") || runeLen(line) != 6 {
			t.Errorf("line %q is a partial bullet", line)
		}
	}
}

func TestShrinkBody_SingleLineHardTruncation(t *testing.T) {
	body := "• " + strings.Repeat("x", 200) + "\n...and 9 more"

	shrunk := shrinkBody(body, 60)
	if runeLen(shrunk) > 60 {
		t.Fatalf("shrunk body is %d runes, want <= 60", runeLen(shrunk))
	}
	lines := strings.Split(shrunk, "\n")
	if len(lines) != 2 {
		t.Fatalf("want hard-truncated line plus indicator, got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[0], ellipsis) {
		t.Errorf("hard-truncated line %q should end with %q", lines[0], ellipsis)
	}
	if _, ok := parseMoreIndicator(lines[1]); !ok {
		t.Errorf("indicator line lost after hard truncation: %q", lines[1])
	}
}

func TestShrinkBody_LoneIndicatorDropped(t *testing.T) {
	// A body that is nothing but the indicator has no content to stand
	// for; it must be dropped whole, never chopped into "...an...".
	shrunk := shrinkBody("...and 7 more", 5)
	if shrunk != "" {
		t.Errorf("lone indicator should be dropped, got %q", shrunk)
	}
}

func TestShrinkBody_NoIndicatorNaiveTruncation(t *testing.T) {
	body := strings.Repeat("a", 100)
	shrunk := shrinkBody(body, 50)
	if runeLen(shrunk) != 50 {
		t.Errorf("shrunk body is %d runes, want exactly 50", runeLen(shrunk))
	}
	if !strings.HasSuffix(shrunk, ellipsis) {
		t.Errorf("naively truncated body should end with %q", ellipsis)
	}
	if shrunk != strings.Repeat("a", 47)+ellipsis {
		t.Errorf("unexpected truncation result %q", shrunk)
	}
}

func TestShrinkBody_FitsUnchanged(t *testing.T) {
	body := "• one\n• two"
	if got := shrinkBody(body, 100); got != body {
		t.Errorf("body within budget was altered: %q", got)
	}
}

func TestShrinkBody_ZeroBudget(t *testing.T) {
	if got := shrinkBody("anything", 0); got != "" {
		t.Errorf("zero budget should produce empty body, got %q", got)
	}
}

func TestBulletsFromFeatures(t *testing.T) {
	features := []models.Feature{
		{Title: "Faster startup", Description: "cold start cut in half"},
		{Title: "New config flag"},
		{Title: "Bug fixes"},
	}

	t.Run("all fit without indicator", func(t *testing.T) {
		body := BulletsFromFeatures(features, 200)
		lines := strings.Split(body, "\n")
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want 3: %q", len(lines), body)
		}
		if lines[0] != "• Faster startup: cold start cut in half" {
			t.Errorf("line 0 = %q", lines[0])
		}
		if _, ok := parseMoreIndicator(lines[len(lines)-1]); ok {
			t.Error("no indicator expected when everything fits")
		}
	})

	t.Run("tight budget appends indicator", func(t *testing.T) {
		body := BulletsFromFeatures(features, 70)
		if runeLen(body) > 70 {
			t.Fatalf("body is %d runes, want <= 70", runeLen(body))
		}
		lines := strings.Split(body, "\n")
		n, ok := parseMoreIndicator(lines[len(lines)-1])
		if !ok {
			t.Fatalf("expected indicator line, got %q", body)
		}
		if n < 1 || n >= len(features) {
			t.Errorf("indicator count %d out of range", n)
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		if got := BulletsFromFeatures(nil, 100); got != "" {
			t.Errorf("nil features should yield empty body, got %q", got)
		}
		if got := BulletsFromFeatures(features, 0); got != "" {
			t.Errorf("zero budget should yield empty body, got %q", got)
		}
	})
}

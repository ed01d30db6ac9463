package compose

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ptkhanh/herald/internal/models"
)

var moreIndicatorPattern = regexp.MustCompile(`^\.\.\.and (\d+) more$`)

// moreLine renders the omitted-items indicator in its canonical form.
func moreLine(n int) string {
	return fmt.Sprintf("...and %d more", n)
}

// parseMoreIndicator reports whether line is an omitted-items indicator and
// returns its count.
func parseMoreIndicator(line string) (int, bool) {
	m := moreIndicatorPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	var n int
	fmt.Sscanf(m[1], "%d", &n)
	return n, true
}

// shrinkBody reduces body to at most max code points.
//
// When the body ends with an "...and N more" indicator, whole lines are
// removed from the tail of the list (never partial lines) and the indicator
// count grows by one per removed line, so the emitted count stays truthful
// after forced truncation. If a single list line remains and still does not
// fit, that line is hard-truncated with an ellipsis and the indicator is
// re-appended. A body without an indicator gets naive tail truncation.
func shrinkBody(body string, max int) string {
	if max <= 0 {
		return ""
	}
	if runeLen(body) <= max {
		return body
	}

	lines := strings.Split(body, "\n")
	n, hasIndicator := parseMoreIndicator(lines[len(lines)-1])
	if hasIndicator && len(lines) < 2 {
		// An indicator with no content above it carries no information;
		// drop it whole rather than mangle it into "...an...".
		return ""
	}
	if !hasIndicator {
		// Naive tail truncation: drop the overflow plus room for the
		// ellipsis, then append it.
		keep := max - runeLen(ellipsis)
		if keep < 0 {
			keep = 0
		}
		return truncateRunes(body, keep) + ellipsis
	}

	content := lines[: len(lines)-1 : len(lines)-1]
	removed := 0
	for len(content) > 1 {
		candidate := strings.Join(content, "\n") + "\n" + moreLine(n+removed)
		if runeLen(candidate) <= max {
			return candidate
		}
		content = content[:len(content)-1]
		removed++
	}

	// One line left. Keep it whole if that fits, else hard-truncate its
	// text and keep the indicator.
	indicator := moreLine(n + removed)
	if candidate := content[0] + "\n" + indicator; runeLen(candidate) <= max {
		return candidate
	}

	avail := max - runeLen(indicator) - 1 - runeLen(ellipsis)
	if avail < 0 {
		avail = 0
	}
	return truncateRunes(content[0], avail) + ellipsis + "\n" + indicator
}

// truncateRunes returns the first max code points of s.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// BulletsFromFeatures renders features as a bullet list within budget code
// points, one feature per line. When not all features fit, the list ends
// with an "...and N more" line counting the omitted features. This is the
// extractive fallback used when AI summarization is unavailable or fails.
func BulletsFromFeatures(features []models.Feature, budget int) string {
	if len(features) == 0 || budget <= 0 {
		return ""
	}

	var (
		lines []string
		used  int
	)
	for i, f := range features {
		line := "• " + f.Title
		if f.Description != "" {
			line += ": " + f.Description
		}

		cost := runeLen(line)
		if len(lines) > 0 {
			cost++ // joining newline
		}

		// Reserve room for the indicator line unless every remaining
		// feature is already placed.
		reserve := 0
		if omitted := len(features) - i - 1; omitted > 0 {
			reserve = runeLen(moreLine(omitted)) + 1
		}

		if used+cost+reserve > budget {
			omitted := len(features) - i
			if len(lines) == 0 {
				// Not even the first feature fits whole; fall back to a
				// hard-truncated single line.
				return truncateRunes(line, budget-runeLen(ellipsis)) + ellipsis
			}
			lines = append(lines, moreLine(omitted))
			break
		}

		lines = append(lines, line)
		used += cost
	}

	return strings.Join(lines, "\n")
}

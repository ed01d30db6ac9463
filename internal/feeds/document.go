package feeds

import (
	"regexp"
	"strings"
	"time"

	"github.com/ptkhanh/herald/internal/models"
	"golang.org/x/net/html"
)

// minBulletRunes is the minimum trimmed bullet length; anything shorter is
// discarded as noise.
const minBulletRunes = 5

// headingDatePattern matches a month name + day heading with an optional
// year, e.g. "June 12, 2026" or "February 3".
var headingDatePattern = regexp.MustCompile(
	`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})(?:,?\s+(\d{4}))?\b`)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// Section is one dated block of a release-notes document.
type Section struct {
	Date     time.Time
	Features []models.Feature
}

// ScanDocument splits a markdown or HTML release-notes document into dated
// sections. Sections are delimited by headings that carry a parseable
// calendar date; headings without a year assume assumeYear. Each section
// accumulates bullet lines until the next heading; a bullet spanning
// multiple physical lines is joined with single spaces.
func ScanDocument(doc string, assumeYear int) []Section {
	doc = stripFrontMatter(doc)

	var lines []string
	if looksLikeHTML(doc) {
		lines = htmlToLines(doc)
	} else {
		lines = strings.Split(doc, "\n")
	}

	var (
		sections []Section
		current  *Section
		bullet   strings.Builder
	)

	flushBullet := func() {
		text := strings.TrimSpace(bullet.String())
		bullet.Reset()
		if current == nil || runeCount(text) < minBulletRunes {
			return
		}
		current.Features = append(current.Features, featureFromBullet(text))
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")

		switch {
		case isHeading(line):
			flushBullet()
			if date, ok := parseHeadingDate(line, assumeYear); ok {
				sections = append(sections, Section{Date: date})
				current = &sections[len(sections)-1]
			} else {
				// A heading without a date ends the current section.
				current = nil
			}

		case isBullet(line):
			flushBullet()
			bullet.WriteString(strings.TrimSpace(trimBulletMarker(line)))

		case strings.TrimSpace(line) == "":
			flushBullet()

		default:
			// Continuation of the previous bullet, joined with a space.
			if bullet.Len() > 0 {
				bullet.WriteString(" ")
				bullet.WriteString(strings.TrimSpace(line))
			}
		}
	}
	flushBullet()

	return sections
}

// SectionsOn filters sections to those dated on the given calendar day.
func SectionsOn(sections []Section, day time.Time) []Section {
	var out []Section
	for _, s := range sections {
		if s.Date.Year() == day.Year() && s.Date.YearDay() == day.YearDay() {
			out = append(out, s)
		}
	}
	return out
}

// SectionsBetween filters sections to those dated within [start, end],
// inclusive on both calendar days.
func SectionsBetween(sections []Section, start, end time.Time) []Section {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)

	var out []Section
	for _, s := range sections {
		if !s.Date.Before(startDay) && !s.Date.After(endDay) {
			out = append(out, s)
		}
	}
	return out
}

// ExtractFeatures pulls bullet lines out of a release body (markdown or
// HTML) without requiring dated headings. Used for the extractive
// formatting fallback on syndication entries.
func ExtractFeatures(body string) []models.Feature {
	var lines []string
	if looksLikeHTML(body) {
		lines = htmlToLines(body)
	} else {
		lines = strings.Split(body, "\n")
	}

	var (
		features []models.Feature
		bullet   strings.Builder
	)
	flush := func() {
		text := strings.TrimSpace(bullet.String())
		bullet.Reset()
		if runeCount(text) >= minBulletRunes {
			features = append(features, featureFromBullet(text))
		}
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		switch {
		case isBullet(line):
			flush()
			bullet.WriteString(strings.TrimSpace(trimBulletMarker(line)))
		case isHeading(line) || strings.TrimSpace(line) == "":
			flush()
		default:
			if bullet.Len() > 0 {
				bullet.WriteString(" ")
				bullet.WriteString(strings.TrimSpace(line))
			}
		}
	}
	flush()

	return features
}

// featureFromBullet splits "Category: rest" bullets into category and
// title; everything else becomes a bare title.
func featureFromBullet(text string) models.Feature {
	text = StripHTML(text)
	if cat, rest, ok := strings.Cut(text, ": "); ok && len(cat) <= 24 && !strings.Contains(cat, " ") {
		return models.Feature{Category: cat, Title: strings.TrimSpace(rest)}
	}
	return models.Feature{Title: text}
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

func isBullet(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

func trimBulletMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	return trimmed[2:]
}

// parseHeadingDate extracts a calendar date from a heading line. Headings
// without an explicit year assume assumeYear.
func parseHeadingDate(line string, assumeYear int) (time.Time, bool) {
	m := headingDatePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}

	month := months[strings.ToLower(m[1])]

	day := 0
	for _, r := range m[2] {
		day = day*10 + int(r-'0')
	}
	if day < 1 || day > 31 {
		return time.Time{}, false
	}

	year := assumeYear
	if m[3] != "" {
		year = 0
		for _, r := range m[3] {
			year = year*10 + int(r-'0')
		}
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// frontMatterEdition extracts the Edition (or ProductEdition) declaration
// from a leading front-matter block delimited by "---" lines. Returns false
// when the document has no front matter or no edition declaration.
func frontMatterEdition(doc string) (string, bool) {
	body, ok := frontMatter(doc)
	if !ok {
		return "", false
	}
	for _, line := range strings.Split(body, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if k := strings.TrimSpace(key); k == "Edition" || k == "ProductEdition" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// HasEdition reports whether the document's front matter declares the given
// edition.
func HasEdition(doc, edition string) bool {
	got, ok := frontMatterEdition(doc)
	return ok && strings.EqualFold(got, edition)
}

func frontMatter(doc string) (string, bool) {
	rest, found := strings.CutPrefix(doc, "---\n")
	if !found {
		return "", false
	}
	body, _, found := strings.Cut(rest, "\n---")
	if !found {
		return "", false
	}
	return body, true
}

func stripFrontMatter(doc string) string {
	rest, found := strings.CutPrefix(doc, "---\n")
	if !found {
		return doc
	}
	_, after, found := strings.Cut(rest, "\n---")
	if !found {
		return doc
	}
	return after
}

func looksLikeHTML(doc string) bool {
	head := strings.ToLower(strings.TrimSpace(doc))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body")
}

// htmlToLines lowers an HTML document to text lines the markdown scanner
// understands: h1-h4 become "## " headings, li become "- " bullets, other
// block elements become plain lines.
func htmlToLines(doc string) []string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return strings.Split(doc, "\n")
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "header", "footer":
				return
			case "h1", "h2", "h3", "h4":
				lines = append(lines, "## "+nodeText(n), "")
				return
			case "li":
				lines = append(lines, "- "+nodeText(n))
				return
			case "p":
				lines = append(lines, nodeText(n), "")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return lines
}

// nodeText collects the concatenated text content of a node, with runs of
// whitespace collapsed to single spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

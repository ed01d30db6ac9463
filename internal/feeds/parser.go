package feeds

import (
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"github.com/ptkhanh/herald/internal/models"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// entriesFromFeed converts gofeed items into entries 1:1. The item GUID is
// the stable identity; items without one fall back to their link. Items with
// neither are unidentifiable and skipped. Missing content degrades to an
// empty body rather than failing the fetch.
func entriesFromFeed(feed *gofeed.Feed) []models.Entry {
	var entries []models.Entry
	for _, item := range feed.Items {
		id := item.GUID
		if id == "" {
			id = item.Link
		}
		if id == "" {
			continue
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}

		var updated time.Time
		switch {
		case item.UpdatedParsed != nil:
			updated = *item.UpdatedParsed
		case item.PublishedParsed != nil:
			updated = *item.PublishedParsed
		}

		entries = append(entries, models.Entry{
			ID:        id,
			Title:     strings.TrimSpace(item.Title),
			Body:      body,
			Link:      item.Link,
			UpdatedAt: updated,
		})
	}
	return entries
}

// StripHTML removes HTML tags from s and unescapes HTML entities.
func StripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}

// truncateWords returns the first maxWords whitespace-delimited words from s.
// If s contains fewer than maxWords words, it is returned unchanged.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

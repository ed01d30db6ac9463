package models

import (
	"strings"
	"time"
)

// Entry represents one release or changelog item from an upstream source.
type Entry struct {
	// ID is the stable identifier assigned by the feed. It is opaque and
	// only ever compared for equality against the stream cursor.
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Link      string    `json:"link"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feature is a single extracted or AI-generated release note bullet.
// Features are derived per run and never persisted outside the summary cache.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Cursor is the last-successfully-published position for a stream. The
// persisted form is an opaque string: either a bare value (a feed entry ID)
// or a composite "value|hash" where the hash detects silent edits to a
// changelog section that keeps the same date.
type Cursor struct {
	Value string
	Hash  string
}

// ParseCursor splits a persisted cursor string into its value and optional
// content hash. A legacy cursor with no separator parses with an empty Hash.
func ParseCursor(s string) Cursor {
	value, hash, _ := strings.Cut(s, "|")
	return Cursor{Value: value, Hash: hash}
}

// String encodes the cursor back into its persisted form.
func (c Cursor) String() string {
	if c.Hash == "" {
		return c.Value
	}
	return c.Value + "|" + c.Hash
}

// IsZero reports whether the cursor carries no position at all.
func (c Cursor) IsZero() bool {
	return c.Value == "" && c.Hash == ""
}

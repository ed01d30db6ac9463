package pipeline

import (
	"sort"

	"github.com/ptkhanh/herald/internal/models"
)

// SortNewestFirst orders entries by UpdatedAt descending, in place. Feed
// sources deliver items in whatever order they like, so ordering is always
// imposed explicitly before selection.
func SortNewestFirst(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
}

// SelectNew computes the subset of entries that are new relative to the
// last-published cursor. Entries must be newest-first; the result preserves
// that order.
//
// An empty lastCursor means the stream has never published: only the single
// most-recent entry is selected, never the full history, so a first
// deployment cannot burst-publish a backlog.
//
// With a cursor, entries are collected newest to oldest until (and
// excluding) the one whose ID equals the cursor. A cursor that is no longer
// in the visible window returns every entry with found=false; the caller
// decides how loudly to treat that.
func SelectNew(entries []models.Entry, lastCursor string) (selected []models.Entry, found bool) {
	if len(entries) == 0 {
		return nil, false
	}

	if lastCursor == "" {
		return entries[:1], true
	}

	for _, e := range entries {
		if e.ID == lastCursor {
			return selected, true
		}
		selected = append(selected, e)
	}
	return selected, false
}

// PublishOrder returns the entries oldest-first, the order they are
// published in to preserve chronology.
func PublishOrder(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

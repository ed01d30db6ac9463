// Package pipeline orchestrates one poll cycle per stream: fetch, filter,
// select against the cursor, summarize, compose and publish, then advance
// the cursor. The cursor moves only after a successful publish, so any
// failure leaves the entry eligible for retry on the next cycle.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ptkhanh/herald/internal/ai"
	"github.com/ptkhanh/herald/internal/compose"
	"github.com/ptkhanh/herald/internal/config"
	"github.com/ptkhanh/herald/internal/feeds"
	"github.com/ptkhanh/herald/internal/models"
	"github.com/ptkhanh/herald/internal/publish"
	"github.com/ptkhanh/herald/internal/storage"
)

// CursorStore persists per-stream publish positions.
type CursorStore interface {
	GetCursor(ctx context.Context, stream string) (string, error)
	SetCursor(ctx context.Context, stream, value string) error
}

// SummaryCache stores generated summaries so retried document runs on the
// same day do not repeat the summarizer call.
type SummaryCache interface {
	GetSummary(ctx context.Context, date, variant string) (*storage.CachedSummary, error)
	PutSummary(ctx context.Context, date, variant, summary string) error
}

// Publisher delivers a finished post.
type Publisher interface {
	PublishAll(ctx context.Context, text string) error
}

var (
	_ CursorStore  = (*storage.Store)(nil)
	_ SummaryCache = (*storage.Store)(nil)
	_ Publisher    = (*publish.Dispatcher)(nil)
)

// Runner executes poll cycles for configured streams.
type Runner struct {
	fetcher    *feeds.Fetcher
	summarizer ai.Summarizer // nil disables AI summaries
	publisher  Publisher
	cursors    CursorStore
	cache      SummaryCache // nil disables summary caching
	buffer     int

	now func() time.Time // overridable in tests
}

// NewRunner wires a Runner. summarizer and cache may be nil; the pipeline
// degrades to extractive formatting and uncached summaries respectively.
func NewRunner(fetcher *feeds.Fetcher, summarizer ai.Summarizer, publisher Publisher, cursors CursorStore, cache SummaryCache, buffer int) *Runner {
	return &Runner{
		fetcher:    fetcher,
		summarizer: summarizer,
		publisher:  publisher,
		cursors:    cursors,
		cache:      cache,
		buffer:     buffer,
		now:        time.Now,
	}
}

// RunStream executes one poll cycle for the stream. fresh bypasses the
// summary cache read (the result is still written back), which matters only
// for document streams.
//
// A fetch failure is a skipped cycle, not an error: upstream flakiness must
// not take the scheduler down. Publish and cursor-write failures are
// returned because they need operator attention.
func (r *Runner) RunStream(ctx context.Context, stream config.StreamConfig, fresh bool) error {
	if stream.Kind == "document" {
		return r.runDocument(ctx, stream, fresh)
	}
	return r.runFeed(ctx, stream)
}

func (r *Runner) runFeed(ctx context.Context, stream config.StreamConfig) error {
	entries, err := r.fetcher.FetchFeed(ctx, stream.FeedURL)
	if err != nil {
		slog.Warn("feed fetch failed, skipping cycle", "stream", stream.Name, "error", err)
		return nil
	}

	rules := feeds.RuleSetFor(stream.Filter)
	var kept []models.Entry
	for _, e := range entries {
		if reason, excluded := rules.IsExcluded(e.Title, e.Body); excluded {
			slog.Debug("entry excluded", "stream", stream.Name, "id", e.ID, "reason", reason)
			continue
		}
		kept = append(kept, e)
	}
	SortNewestFirst(kept)

	cursor := r.loadCursor(ctx, stream.Name)
	selected, found := SelectNew(kept, cursor)
	if cursor != "" && !found {
		slog.Warn("cursor not in feed window, treating all entries as new",
			"stream", stream.Name, "cursor", cursor)
	}
	if len(selected) == 0 {
		slog.Debug("no new entries", "stream", stream.Name)
		return nil
	}

	if stream.Variant == string(compose.VariantWeekly) {
		return r.publishWeekly(ctx, stream, kept, selected)
	}

	// Oldest first, so a multi-entry backlog reads chronologically and a
	// mid-batch failure leaves the cursor at the last published entry.
	for _, entry := range PublishOrder(selected) {
		if err := r.publishEntry(ctx, stream, entry); err != nil {
			return fmt.Errorf("stream %q: %w", stream.Name, err)
		}
	}
	return nil
}

func (r *Runner) publishEntry(ctx context.Context, stream config.StreamConfig, entry models.Entry) error {
	raw := feeds.StripHTML(r.fetcher.EnrichBody(ctx, entry))

	layout := compose.LayoutFor(compose.Variant(stream.Variant),
		stream.Product, entry.Title, r.postLink(stream, entry.Link), stream.Hashtag, r.buffer)

	body := r.summaryBody(ctx, ai.Request{
		Title:   entry.Title,
		Content: raw,
		Budget:  layout.Budget(),
		Variant: stream.Variant,
	}, raw)

	post := layout.Compose(body)
	if err := r.publisher.PublishAll(ctx, post.Text); err != nil {
		return fmt.Errorf("publishing %q: %w", entry.ID, err)
	}
	slog.Info("entry published", "stream", stream.Name, "id", entry.ID, "chars", post.Length)

	if err := r.cursors.SetCursor(ctx, stream.Name, entry.ID); err != nil {
		return fmt.Errorf("persisting cursor after publishing %q: %w", entry.ID, err)
	}
	return nil
}

// publishWeekly posts a single recap covering the last seven days of
// entries. It runs only when selection found at least one new entry, so a
// quiet week produces no post at all.
func (r *Runner) publishWeekly(ctx context.Context, stream config.StreamConfig, all, selected []models.Entry) error {
	end := r.now()
	start := end.AddDate(0, 0, -6)

	var week []models.Entry
	for _, e := range all {
		if !e.UpdatedAt.Before(start) && !e.UpdatedAt.After(end) {
			week = append(week, e)
		}
	}
	if len(week) == 0 {
		week = selected
	}

	var (
		content      strings.Builder
		improvements int
	)
	for _, e := range PublishOrder(week) {
		body := feeds.StripHTML(e.Body)
		fmt.Fprintf(&content, "%s\n%s\n\n", e.Title, body)
		improvements += len(feeds.ExtractFeatures(body))
	}

	stats := compose.WeeklyStats{
		Releases:     len(week),
		Improvements: improvements,
		Start:        start,
		End:          end,
	}
	newest := selected[0]
	layout := compose.WeeklyLayout(stream.Product, stats,
		r.postLink(stream, newest.Link), stream.Hashtag, r.buffer)

	body := r.summaryBody(ctx, ai.Request{
		Title:   fmt.Sprintf("%s weekly recap", stream.Product),
		Content: content.String(),
		Budget:  layout.Budget(),
		Variant: stream.Variant,
	}, content.String())

	post := layout.Compose(body)
	if err := r.publisher.PublishAll(ctx, post.Text); err != nil {
		return fmt.Errorf("stream %q: publishing recap: %w", stream.Name, err)
	}
	slog.Info("weekly recap published", "stream", stream.Name,
		"releases", stats.Releases, "chars", post.Length)

	if err := r.cursors.SetCursor(ctx, stream.Name, newest.ID); err != nil {
		return fmt.Errorf("stream %q: persisting cursor after recap: %w", stream.Name, err)
	}
	return nil
}

// runDocument publishes a digest of the changelog sections dated today. The
// cursor is a "date|hash" composite; a matching date with a different
// content hash means the section was edited after publishing and the digest
// is posted again.
func (r *Runner) runDocument(ctx context.Context, stream config.StreamConfig, fresh bool) error {
	src := feeds.NewDocumentSource(stream.Document, r.fetcher)

	day := r.now()
	sections, err := src.SectionsOn(ctx, day)
	if err != nil {
		slog.Warn("document fetch failed, skipping cycle", "stream", stream.Name, "error", err)
		return nil
	}

	var features []models.Feature
	for _, s := range sections {
		features = append(features, s.Features...)
	}
	if len(features) == 0 {
		slog.Debug("no changelog sections for today", "stream", stream.Name)
		return nil
	}

	date := day.Format("2006-01-02")
	hash := contentHash(features)
	prev := models.ParseCursor(r.loadCursor(ctx, stream.Name))
	if prev.Value == date && prev.Hash == hash {
		slog.Debug("digest already published", "stream", stream.Name, "date", date)
		return nil
	}

	layout := compose.DigestLayout(stream.Product, day, day, stream.Link, stream.Hashtag, r.buffer)
	body := r.digestBody(ctx, stream, date, features, layout.Budget(), fresh)

	post := layout.Compose(body)
	if err := r.publisher.PublishAll(ctx, post.Text); err != nil {
		return fmt.Errorf("stream %q: publishing digest: %w", stream.Name, err)
	}
	slog.Info("digest published", "stream", stream.Name, "date", date,
		"features", len(features), "chars", post.Length)

	cursor := models.Cursor{Value: date, Hash: hash}
	if err := r.cursors.SetCursor(ctx, stream.Name, cursor.String()); err != nil {
		return fmt.Errorf("stream %q: persisting cursor after digest: %w", stream.Name, err)
	}
	return nil
}

// digestBody produces the digest body, consulting the summary cache first.
// The cache is keyed by date and stream name so two document streams
// digesting the same day stay independent.
func (r *Runner) digestBody(ctx context.Context, stream config.StreamConfig, date string, features []models.Feature, budget int, fresh bool) string {
	if r.cache != nil && !fresh {
		if cached, err := r.cache.GetSummary(ctx, date, stream.Name); err == nil {
			return cached.Summary
		} else if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("summary cache read failed", "stream", stream.Name, "error", err)
		}
	}

	var content strings.Builder
	for _, f := range features {
		fmt.Fprintf(&content, "%s: %s\n", f.Title, f.Description)
	}
	body := r.summaryBody(ctx, ai.Request{
		Title:   fmt.Sprintf("%s changelog %s", stream.Product, date),
		Content: content.String(),
		Budget:  budget,
		Variant: stream.Variant,
	}, "")
	if body == "" {
		body = compose.BulletsFromFeatures(features, budget)
	}

	if r.cache != nil && body != "" {
		if err := r.cache.PutSummary(ctx, date, stream.Name, body); err != nil {
			slog.Warn("summary cache write failed", "stream", stream.Name, "error", err)
		}
	}
	return body
}

// summaryBody asks the summarizer for a budgeted body and falls back to
// extractive formatting of the raw text when the summarizer is unavailable,
// fails, or returns nothing.
func (r *Runner) summaryBody(ctx context.Context, req ai.Request, raw string) string {
	if r.summarizer != nil {
		out, err := r.summarizer.Summarize(ctx, req)
		if err != nil {
			slog.Warn("summarizer failed, using extractive fallback", "error", err)
		} else if strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		}
	}

	if features := feeds.ExtractFeatures(raw); len(features) > 0 {
		return compose.BulletsFromFeatures(features, req.Budget)
	}
	// No bullet structure to extract; the composer truncates raw text to fit.
	return raw
}

// loadCursor reads the stream cursor, degrading to "no cursor" on any read
// failure. The degraded path can only cause a duplicate post, never a lost
// one, which is the right trade for a read error.
func (r *Runner) loadCursor(ctx context.Context, stream string) string {
	value, err := r.cursors.GetCursor(ctx, stream)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("cursor read failed, treating stream as unpublished",
				"stream", stream, "error", err)
		}
		return ""
	}
	return value
}

func (r *Runner) postLink(stream config.StreamConfig, entryLink string) string {
	if stream.Link != "" {
		return stream.Link
	}
	return entryLink
}

// contentHash fingerprints the extracted features so edits to an
// already-published changelog section are detectable.
func contentHash(features []models.Feature) string {
	h := sha256.New()
	for _, f := range features {
		h.Write([]byte(f.Title))
		h.Write([]byte{0})
		h.Write([]byte(f.Description))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:10]
}

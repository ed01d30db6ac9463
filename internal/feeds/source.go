package feeds

import (
	"context"
	"log/slog"
	"time"

	"github.com/ptkhanh/herald/internal/config"
)

// DocumentSource fetches dated changelog sections from a versioned
// release-notes page, trying candidate URLs until one validates and yields
// features.
type DocumentSource struct {
	fetcher  *Fetcher
	resolver *Resolver
	edition  string
}

// NewDocumentSource wires a document-mode source from its config.
func NewDocumentSource(cfg config.DocumentConfig, fetcher *Fetcher) *DocumentSource {
	return &DocumentSource{
		fetcher:  fetcher,
		resolver: NewResolver(cfg, fetcher.Client()),
		edition:  cfg.Edition,
	}
}

// SectionsOn returns the changelog sections dated on the given day. Every
// candidate URL is tried in order; a candidate is skipped when it fails to
// fetch, fails edition validation, or has no section for the day — a date
// can legitimately live on either the current or the previous version's
// page, so an empty candidate is not a terminal result. No matching
// candidate yields zero sections, not an error.
func (s *DocumentSource) SectionsOn(ctx context.Context, day time.Time) ([]Section, error) {
	return s.sections(ctx, day, func(all []Section) []Section {
		return SectionsOn(all, day)
	})
}

// SectionsBetween returns the changelog sections dated within [start, end].
func (s *DocumentSource) SectionsBetween(ctx context.Context, start, end time.Time) ([]Section, error) {
	return s.sections(ctx, end, func(all []Section) []Section {
		return SectionsBetween(all, start, end)
	})
}

func (s *DocumentSource) sections(ctx context.Context, target time.Time, match func([]Section) []Section) ([]Section, error) {
	for _, candidate := range s.resolver.Candidates(ctx, target) {
		doc, err := s.fetcher.FetchDocument(ctx, candidate)
		if err != nil {
			slog.Warn("document candidate fetch failed", "url", candidate, "error", err)
			continue
		}

		if !HasEdition(doc, s.edition) {
			slog.Debug("document candidate failed edition validation",
				"url", candidate, "want", s.edition)
			continue
		}

		if matched := match(ScanDocument(doc, target.Year())); len(matched) > 0 {
			return matched, nil
		}
		slog.Debug("document candidate has no matching sections", "url", candidate)
	}

	return nil, nil
}

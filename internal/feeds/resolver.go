package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/ptkhanh/herald/internal/config"
)

// versionPattern extracts the version integer from a resolved release-notes
// URL, e.g. ".../v1_107".
var versionPattern = regexp.MustCompile(`v1_(\d+)`)

// versionCacheTTL bounds how long a redirect-resolved version number is
// reused. The real value changes at most monthly, so a day is comfortably
// fresh while avoiding a redirect probe on every cycle.
const versionCacheTTL = 24 * time.Hour

// Resolver computes candidate document URLs for release-notes pages whose
// URL embeds a monthly version number. The redirect strategy is preferred;
// date arithmetic from a fixed reference point is the fallback.
type Resolver struct {
	cfg    config.DocumentConfig
	client *http.Client

	mu         sync.Mutex
	cachedVer  int
	resolvedAt time.Time
}

// NewResolver creates a Resolver sharing the given HTTP client.
func NewResolver(cfg config.DocumentConfig, client *http.Client) *Resolver {
	return &Resolver{cfg: cfg, client: client}
}

// Candidates returns the document URLs to try, in order, for the given
// target date. With a redirect-resolved current version N the candidates
// are N and N-1 (a date near a month boundary may still live on the prior
// version's page). When redirect resolution fails, the expected version is
// computed from the release cadence and the candidates are it and its
// successor.
func (r *Resolver) Candidates(ctx context.Context, target time.Time) []string {
	if ver, err := r.redirectVersion(ctx); err == nil {
		return []string{r.url(ver), r.url(ver - 1)}
	} else {
		slog.Debug("redirect resolution failed, using date arithmetic", "error", err)
	}

	ver := r.versionForDate(target)
	return []string{r.url(ver), r.url(ver + 1)}
}

func (r *Resolver) url(version int) string {
	return r.cfg.BaseURL + "v1_" + strconv.Itoa(version)
}

// redirectVersion probes the stable redirector URL and extracts the version
// integer from the final resolved URL. The result is memoized for
// versionCacheTTL.
func (r *Resolver) redirectVersion(ctx context.Context) (int, error) {
	r.mu.Lock()
	if r.cachedVer > 0 && time.Since(r.resolvedAt) < versionCacheTTL {
		ver := r.cachedVer
		r.mu.Unlock()
		return ver, nil
	}
	r.mu.Unlock()

	if r.cfg.RedirectorURL == "" {
		return 0, fmt.Errorf("no redirector URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.cfg.RedirectorURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating redirect probe: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probing %q: %w", r.cfg.RedirectorURL, err)
	}
	resp.Body.Close()

	final := resp.Request.URL.String()
	m := versionPattern.FindStringSubmatch(final)
	if m == nil {
		return 0, fmt.Errorf("no version in resolved URL %q", final)
	}
	ver, err := strconv.Atoi(m[1])
	if err != nil || ver < 1 {
		return 0, fmt.Errorf("bad version in resolved URL %q", final)
	}

	r.mu.Lock()
	r.cachedVer = ver
	r.resolvedAt = time.Now()
	r.mu.Unlock()

	slog.Debug("resolved document version via redirect", "version", ver, "url", final)
	return ver, nil
}

// versionForDate computes the expected version for the target date from the
// configured reference point plus the calendar months elapsed between the
// two release months.
func (r *Resolver) versionForDate(target time.Time) int {
	ref, err := time.Parse("2006-01-02", r.cfg.ReferenceDate)
	if err != nil {
		// Config validation guarantees parseability; keep a sane floor.
		return r.cfg.ReferenceVersion
	}

	refMonth := releaseMonth(ref)
	targetMonth := releaseMonth(target)
	elapsed := (targetMonth.Year()-refMonth.Year())*12 + int(targetMonth.Month()) - int(refMonth.Month())
	return r.cfg.ReferenceVersion + elapsed
}

// releaseMonth returns the first of the month a given date's release
// belongs to. Releases ship on or after the first Thursday of the month, so
// a date before that Thursday still belongs to the previous month's
// release.
func releaseMonth(d time.Time) time.Time {
	month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	if d.Day() < firstThursday(d.Year(), d.Month()) {
		month = month.AddDate(0, -1, 0)
	}
	return month
}

// firstThursday returns the day of month of the first Thursday.
func firstThursday(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Thursday) - int(first.Weekday()) + 7) % 7
	return 1 + offset
}

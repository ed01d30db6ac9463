package compose

import (
	"strings"
	"testing"
	"time"
)

func TestDateRangeLabel(t *testing.T) {
	day := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)
	later := time.Date(2026, time.February, 7, 23, 0, 0, 0, time.UTC)

	if got := DateRangeLabel(day, day); got != "Feb 3" {
		t.Errorf("same-day label = %q, want %q", got, "Feb 3")
	}
	// Same calendar day at a different hour still collapses.
	sameDay := time.Date(2026, time.February, 3, 23, 59, 0, 0, time.UTC)
	if got := DateRangeLabel(day, sameDay); got != "Feb 3" {
		t.Errorf("same-day label = %q, want %q", got, "Feb 3")
	}
	if got := DateRangeLabel(day, later); got != "Feb 3 – Feb 7" {
		t.Errorf("range label = %q, want %q", got, "Feb 3 – Feb 7")
	}
}

func TestWeeklyLayout_Header(t *testing.T) {
	stats := WeeklyStats{
		Releases:     3,
		Improvements: 17,
		Start:        time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
	}
	l := WeeklyLayout("Example CLI", stats, "https://example.com", "#ExampleCLI", 6)

	if !strings.Contains(l.Header, "3 releases") {
		t.Errorf("header %q missing release count", l.Header)
	}
	if !strings.Contains(l.Header, "17 improvements") {
		t.Errorf("header %q missing improvement count", l.Header)
	}
	if !strings.Contains(l.Header, "Mar 2 – Mar 6") {
		t.Errorf("header %q missing date range", l.Header)
	}

	post := l.Compose(strings.Repeat("• a weekly improvement line\n", 20))
	if post.Length > PlatformLimit {
		t.Errorf("weekly post Length = %d, exceeds %d", post.Length, PlatformLimit)
	}
}

func TestLayoutFor(t *testing.T) {
	release := LayoutFor(VariantRelease, "Tool", "v1.2.3", "https://example.com", "#Tool", 6)
	if !strings.Contains(release.Header, "Tool v1.2.3") {
		t.Errorf("release header = %q", release.Header)
	}

	sdk := LayoutFor(VariantSDK, "Tool SDK", "v0.9.0", "https://example.com", "#ToolSDK", 6)
	if sdk.Header == release.Header {
		t.Error("sdk layout should differ from release layout")
	}
	if !strings.Contains(sdk.Header, "Tool SDK v0.9.0") {
		t.Errorf("sdk header = %q", sdk.Header)
	}
}

func TestDigestLayout_CollapsedDate(t *testing.T) {
	day := time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC)
	l := DigestLayout("Example Editor", day, day, "https://example.com/updates", "#ExampleEditor", 6)
	if !strings.Contains(l.Header, "(Feb 11)") {
		t.Errorf("digest header = %q, want collapsed single date", l.Header)
	}
}

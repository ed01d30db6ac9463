package compose

import (
	"fmt"
	"time"
)

// Variant names a layout/prompt configuration for the formatter and
// summarizer.
type Variant string

const (
	VariantRelease Variant = "release"
	VariantSDK     Variant = "sdk"
	VariantWeekly  Variant = "weekly"
	VariantDigest  Variant = "digest"
)

// WeeklyStats feeds the weekly-recap header.
type WeeklyStats struct {
	Releases     int
	Improvements int
	Start        time.Time
	End          time.Time
}

// ReleaseLayout is the single-release announcement layout.
func ReleaseLayout(product, version, link, hashtag string, buffer int) Layout {
	return Layout{
		Header: fmt.Sprintf("🚀 %s %s is out!", product, version),
		Link:   link,
		Suffix: hashtag,
		Buffer: buffer,
	}
}

// SDKLayout is the SDK-specific release layout.
func SDKLayout(product, version, link, hashtag string, buffer int) Layout {
	return Layout{
		Header: fmt.Sprintf("🛠️ %s %s released", product, version),
		Link:   link,
		Suffix: hashtag,
		Buffer: buffer,
	}
}

// WeeklyLayout is the weekly-recap layout. Its header carries the recap
// stats on additional lines; those newlines count against the body budget
// like any other header character.
func WeeklyLayout(product string, stats WeeklyStats, link, hashtag string, buffer int) Layout {
	header := fmt.Sprintf("📬 This week in %s\n%d releases · %d improvements (%s)",
		product, stats.Releases, stats.Improvements, DateRangeLabel(stats.Start, stats.End))
	return Layout{
		Header: header,
		Link:   link,
		Suffix: hashtag,
		Buffer: buffer,
	}
}

// DigestLayout is the changelog-digest layout.
func DigestLayout(product string, start, end time.Time, link, hashtag string, buffer int) Layout {
	return Layout{
		Header: fmt.Sprintf("📝 %s updates (%s)", product, DateRangeLabel(start, end)),
		Link:   link,
		Suffix: hashtag,
		Buffer: buffer,
	}
}

// LayoutFor builds the layout for the given variant. Weekly layouts need
// stats and are built directly via WeeklyLayout.
func LayoutFor(variant Variant, product, title, link, hashtag string, buffer int) Layout {
	switch variant {
	case VariantSDK:
		return SDKLayout(product, title, link, hashtag, buffer)
	default:
		return ReleaseLayout(product, title, link, hashtag, buffer)
	}
}

// DateRangeLabel renders a compact date range, collapsing to a single date
// when start and end fall on the same day.
func DateRangeLabel(start, end time.Time) string {
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return start.Format("Jan 2")
	}
	return start.Format("Jan 2") + " – " + end.Format("Jan 2")
}

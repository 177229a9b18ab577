package domain

import "time"

// TimeRange is a requested lookback window for the P&L timeline.
type TimeRange string

// Supported time ranges.
const (
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
	Range6m  TimeRange = "6m"
	Range1y  TimeRange = "1y"
)

// DefaultRange is used when the request omits or misspells the range.
const DefaultRange = Range30d

// ParseTimeRange returns the matching range, or DefaultRange for
// anything unrecognized.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case Range24h, Range7d, Range30d, Range6m, Range1y:
		return TimeRange(s)
	}
	return DefaultRange
}

// Duration returns the lookback window length.
func (r TimeRange) Duration() time.Duration {
	switch r {
	case Range24h:
		return 24 * time.Hour
	case Range7d:
		return 7 * 24 * time.Hour
	case Range30d:
		return 30 * 24 * time.Hour
	case Range6m:
		return 180 * 24 * time.Hour
	case Range1y:
		return 365 * 24 * time.Hour
	}
	return Range30d.Duration()
}

// BucketInterval returns the sampling interval for synthetic timelines:
// hourly for 24h, 6-hourly for 7d, daily for 30d, weekly beyond that.
func (r TimeRange) BucketInterval() time.Duration {
	switch r {
	case Range24h:
		return time.Hour
	case Range7d:
		return 6 * time.Hour
	case Range30d:
		return 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

// PointLabel formats a bucket timestamp for chart axes: clock time for
// the 24h range, month/day otherwise.
func (r TimeRange) PointLabel(ts int64) string {
	t := time.Unix(ts, 0).UTC()
	if r == Range24h {
		return t.Format("15:04")
	}
	return t.Format("Jan 2")
}

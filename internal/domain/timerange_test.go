package domain

import (
	"testing"
	"time"
)

func TestParseTimeRange(t *testing.T) {
	cases := []struct {
		in   string
		want TimeRange
	}{
		{"24h", Range24h},
		{"7d", Range7d},
		{"30d", Range30d},
		{"6m", Range6m},
		{"1y", Range1y},
		{"", DefaultRange},
		{"90d", DefaultRange},
		{"garbage", DefaultRange},
	}
	for _, tc := range cases {
		if got := ParseTimeRange(tc.in); got != tc.want {
			t.Errorf("ParseTimeRange(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBucketInterval(t *testing.T) {
	cases := []struct {
		rng  TimeRange
		want time.Duration
	}{
		{Range24h, time.Hour},
		{Range7d, 6 * time.Hour},
		{Range30d, 24 * time.Hour},
		{Range6m, 7 * 24 * time.Hour},
		{Range1y, 7 * 24 * time.Hour},
	}
	for _, tc := range cases {
		if got := tc.rng.BucketInterval(); got != tc.want {
			t.Errorf("%v.BucketInterval() = %v, want %v", tc.rng, got, tc.want)
		}
	}
}

func TestPointLabel(t *testing.T) {
	// 2024-03-15 14:30:00 UTC
	ts := int64(1710513000)

	if got := Range24h.PointLabel(ts); got != "14:30" {
		t.Errorf("24h label = %q, want 14:30", got)
	}
	if got := Range30d.PointLabel(ts); got != "Mar 15" {
		t.Errorf("30d label = %q, want Mar 15", got)
	}
}

package domain

import "time"

const (
	TimelineBuckets = 24
	BucketWidth     = time.Hour
)

// Bucket counts requests created in [Start, Start+Width).
type Bucket struct {
	Start time.Time     `json:"bucketStart"`
	Width time.Duration `json:"-"`
	Count int           `json:"count"`
}

func (b Bucket) End() time.Time {
	return b.Start.Add(b.Width)
}

func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End())
}

// Ratio is the bar height of the bucket relative to peak, in [0, 1].
func (b Bucket) Ratio(peak int) float64 {
	if peak < 1 {
		peak = 1
	}
	return float64(b.Count) / float64(peak)
}

// Timeline is the requests-over-time aggregate for the last 24 hours.
type Timeline struct {
	Buckets    []Bucket `json:"buckets"`
	TotalCount int      `json:"totalCount"`
	PeakCount  int      `json:"peakCount"`
}

// Bucketed is the sum of bucket counts. It is below TotalCount when some
// requests fall outside the window.
func (t Timeline) Bucketed() int {
	sum := 0
	for _, b := range t.Buckets {
		sum += b.Count
	}
	return sum
}

// hourStart zeroes minutes and below on the wall clock of t's location, so
// half-hour zones still get buckets that start on their own hour.
func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// Aggregate buckets requests into 24 hourly slots ending with the hour that
// contains now, oldest first. Requests after now are ignored.
func Aggregate(requests []Request, now time.Time) Timeline {
	buckets := make([]Bucket, TimelineBuckets)
	for i := range buckets {
		k := TimelineBuckets - 1 - i
		buckets[i] = Bucket{
			Start: hourStart(now.Add(-time.Duration(k) * BucketWidth)),
			Width: BucketWidth,
		}
	}

	first, last := buckets[0].Start, buckets[len(buckets)-1].End()
	for _, r := range requests {
		at := r.CreatedAt
		if at.Before(first) || !at.Before(last) || at.After(now) {
			continue
		}
		// Bucket starts are not evenly spaced across DST shifts, so search
		// from the newest slot instead of dividing by the width.
		for i := len(buckets) - 1; i >= 0; i-- {
			if buckets[i].Contains(at) {
				buckets[i].Count++
				break
			}
		}
	}

	peak := 1
	for _, b := range buckets {
		if b.Count > peak {
			peak = b.Count
		}
	}
	return Timeline{Buckets: buckets, TotalCount: len(requests), PeakCount: peak}
}

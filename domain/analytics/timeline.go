package analytics

import (
	"time"

	"github.com/helixml/citetrack/domain/scan"
)

const dayLayout = "2006-01-02"

// DayBucket summarizes one UTC calendar day of scans.
type DayBucket struct {
	Date               string `json:"date"`
	TotalScans         int    `json:"total_scans"`
	ScansWithCitations int    `json:"scans_with_citations"`
	BrandCited         int    `json:"brand_cited"`
	CitationRate       int    `json:"citation_rate"`
}

// WindowStart returns midnight UTC of the first day in a window of
// windowDays days ending on now's day.
func WindowStart(now time.Time, windowDays int) time.Time {
	end := truncateDay(now)
	return end.AddDate(0, 0, -(windowDays - 1))
}

// InWindow keeps the scans scanned on or after the window's first day.
func InWindow(scans []scan.Scan, windowDays int, now time.Time) []scan.Scan {
	if windowDays <= 0 {
		return nil
	}
	start := WindowStart(now, windowDays)
	out := make([]scan.Scan, 0, len(scans))
	for _, s := range scans {
		if !s.ScannedAt().Before(start) {
			out = append(out, s)
		}
	}
	return out
}

// Timeline returns windowDays buckets, oldest first, ending on now's day.
// Scans outside the window are ignored.
func Timeline(scans []scan.Scan, windowDays int, now time.Time) []DayBucket {
	if windowDays <= 0 {
		return nil
	}
	start := WindowStart(now, windowDays)

	buckets := make([]DayBucket, windowDays)
	for i := range buckets {
		buckets[i].Date = start.AddDate(0, 0, i).Format(dayLayout)
	}

	for _, s := range scans {
		idx := int(truncateDay(s.ScannedAt()).Sub(start).Hours() / 24)
		if idx < 0 || idx >= windowDays {
			continue
		}
		b := &buckets[idx]
		b.TotalScans++
		if s.HasCitations() {
			b.ScansWithCitations++
			if s.BrandCited() {
				b.BrandCited++
			}
		}
	}

	for i := range buckets {
		buckets[i].CitationRate = Rate(buckets[i].BrandCited, buckets[i].ScansWithCitations)
	}
	return buckets
}

// Trend is the mean citation rate of the second half of the timeline minus
// that of the first half, in percentage points. An odd middle bucket
// belongs to the second half. It is 0 when either half is empty.
func Trend(buckets []DayBucket) float64 {
	mid := len(buckets) / 2
	first, second := buckets[:mid], buckets[mid:]
	if len(first) == 0 || len(second) == 0 {
		return 0
	}
	return meanRate(second) - meanRate(first)
}

func meanRate(buckets []DayBucket) float64 {
	sum := 0
	for _, b := range buckets {
		sum += b.CitationRate
	}
	return float64(sum) / float64(len(buckets))
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

package progress

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/tempotype/internal/model"
)

// Point is one averaged bucket of a series.
type Point struct {
	Label    string    `json:"date"`
	Start    time.Time `json:"start"`
	WPM      int       `json:"wpm"`
	Accuracy int       `json:"accuracy"`
	Count    int       `json:"count"`
}

type bucket struct {
	start  time.Time
	label  string
	seq    int
	sumWPM float64
	sumAcc float64
	count  int
}

// Aggregate buckets records in the local time zone.
func Aggregate(records []model.AnalyticsRecord, g Granularity) []Point {
	return AggregateIn(records, g, time.Local)
}

// AggregateIn buckets records by g with labels computed in loc, averages
// each bucket, and orders the points chronologically. Minutely keeps one
// point per record. Records without a timestamp or with non-finite values
// are skipped.
func AggregateIn(records []model.AnalyticsRecord, g Granularity, loc *time.Location) []Point {
	if loc == nil {
		loc = time.Local
	}
	keyFn := g.bucket()
	byLabel := map[string]*bucket{}
	buckets := make([]*bucket, 0, len(records))

	for i, rec := range records {
		if !valid(rec) {
			continue
		}
		start, label := keyFn(rec.Timestamp.In(loc))
		var b *bucket
		if g != Minutely {
			b = byLabel[label]
		}
		if b == nil {
			b = &bucket{start: start, label: label, seq: i}
			buckets = append(buckets, b)
			if g != Minutely {
				byLabel[label] = b
			}
		}
		b.sumWPM += rec.WPM
		b.sumAcc += rec.Accuracy
		b.count++
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if !buckets[i].start.Equal(buckets[j].start) {
			return buckets[i].start.Before(buckets[j].start)
		}
		return buckets[i].seq < buckets[j].seq
	})

	points := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, Point{
			Label:    b.label,
			Start:    b.start,
			WPM:      roundHalfUp(b.sumWPM / float64(b.count)),
			Accuracy: roundHalfUp(b.sumAcc / float64(b.count)),
			Count:    b.count,
		})
	}
	return points
}

func valid(rec model.AnalyticsRecord) bool {
	if rec.Timestamp.IsZero() {
		return false
	}
	for _, v := range []float64{rec.WPM, rec.Accuracy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

package progress

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/tempotype/internal/model"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func rec(ts time.Time, wpm, acc float64) model.AnalyticsRecord {
	return model.AnalyticsRecord{Timestamp: ts, WPM: wpm, Accuracy: acc}
}

func TestAggregateMonthlyAverages(t *testing.T) {
	records := []model.AnalyticsRecord{
		rec(at(2024, time.March, 3, 10, 0), 40, 80),
		rec(at(2024, time.March, 28, 22, 15), 60, 90),
	}
	points := AggregateIn(records, Monthly, time.UTC)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	p := points[0]
	if p.Label != "Mar 2024" || p.WPM != 50 || p.Accuracy != 85 || p.Count != 2 {
		t.Fatalf("unexpected point: %+v", p)
	}
}

func TestAggregateWeeklyOrdersAcrossYears(t *testing.T) {
	records := []model.AnalyticsRecord{
		rec(at(2024, time.January, 3, 9, 0), 70, 95),
		rec(at(2023, time.December, 27, 9, 0), 50, 90),
	}
	points := AggregateIn(records, Weekly, time.UTC)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Label != "Week 52, 2023" || points[1].Label != "Week 1, 2024" {
		t.Fatalf("unexpected order: %q then %q", points[0].Label, points[1].Label)
	}
}

func TestWeekOfYear(t *testing.T) {
	cases := []struct {
		ts   time.Time
		want int
	}{
		// 2023 starts on a Sunday.
		{at(2023, time.January, 1, 0, 0), 1},
		{at(2023, time.January, 7, 0, 0), 1},
		{at(2023, time.January, 8, 0, 0), 2},
		{at(2023, time.December, 31, 0, 0), 53},
		// 2024 starts on a Monday.
		{at(2024, time.January, 6, 0, 0), 1},
		{at(2024, time.January, 7, 0, 0), 2},
	}
	for _, tc := range cases {
		if got := WeekOfYear(tc.ts); got != tc.want {
			t.Fatalf("WeekOfYear(%s) = %d, want %d", tc.ts.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestAggregateLabels(t *testing.T) {
	ts := at(2024, time.January, 5, 15, 4)
	cases := map[Granularity]string{
		Monthly:  "Jan 2024",
		Weekly:   "Week 1, 2024",
		Daily:    "5 Jan 2024",
		Hourly:   "3 PM, 5 Jan 2024",
		Minutely: "3:04 PM, 5 Jan 2024",
	}
	for g, want := range cases {
		points := AggregateIn([]model.AnalyticsRecord{rec(ts, 1, 1)}, g, time.UTC)
		if len(points) != 1 || points[0].Label != want {
			t.Fatalf("%s: expected label %q, got %+v", g, want, points)
		}
	}
}

func TestAggregateMinutelyIsIdentity(t *testing.T) {
	ts := at(2024, time.May, 1, 8, 30)
	records := []model.AnalyticsRecord{
		rec(ts.Add(2*time.Minute), 61, 97),
		rec(ts, 55, 92),
		rec(ts, 58, 94),
	}
	points := AggregateIn(records, Minutely, time.UTC)
	if len(points) != len(records) {
		t.Fatalf("expected %d points, got %d", len(records), len(points))
	}
	var sumIn, sumOut float64
	for i := range records {
		sumIn += records[i].WPM + records[i].Accuracy
		sumOut += float64(points[i].WPM + points[i].Accuracy)
	}
	if sumIn != sumOut {
		t.Fatalf("minutely aggregation changed sums: %v vs %v", sumIn, sumOut)
	}
	if points[0].WPM != 55 || points[1].WPM != 58 || points[2].WPM != 61 {
		t.Fatalf("unexpected ordering: %+v", points)
	}
}

func TestAggregateSingleRecordRoundTrip(t *testing.T) {
	points := AggregateIn([]model.AnalyticsRecord{rec(at(2024, time.June, 2, 7, 7), 72, 96)}, Minutely, time.UTC)
	if len(points) != 1 || points[0].WPM != 72 || points[0].Accuracy != 96 {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestAggregateEmpty(t *testing.T) {
	for _, g := range Granularities {
		points := Aggregate(nil, g)
		if points == nil || len(points) != 0 {
			t.Fatalf("%s: expected empty non-nil series, got %#v", g, points)
		}
	}
}

func TestAggregateSkipsMalformedRecords(t *testing.T) {
	records := []model.AnalyticsRecord{
		{WPM: 50, Accuracy: 90},
		rec(at(2024, time.April, 1, 1, 0), math.NaN(), 90),
		rec(at(2024, time.April, 2, 1, 0), 40, math.Inf(1)),
		rec(at(2024, time.April, 3, 1, 0), 44, 88),
	}
	points := AggregateIn(records, Daily, time.UTC)
	if len(points) != 1 || points[0].Label != "3 Apr 2024" {
		t.Fatalf("expected only the valid record, got %+v", points)
	}
}

func TestAggregateOrderingIsChronological(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	base := at(2022, time.November, 20, 0, 0)
	records := make([]model.AnalyticsRecord, 0, 300)
	for i := 0; i < 300; i++ {
		offset := time.Duration(rnd.Int63n(int64(500 * 24 * time.Hour)))
		records = append(records, rec(base.Add(offset), float64(rnd.Intn(120)), float64(rnd.Intn(101))))
	}
	for _, g := range Granularities {
		points := AggregateIn(records, g, time.UTC)
		for i := 1; i < len(points); i++ {
			if points[i].Start.Before(points[i-1].Start) {
				t.Fatalf("%s: points out of order at %d: %s before %s", g, i, points[i].Label, points[i-1].Label)
			}
		}
		total := 0
		for _, p := range points {
			total += p.Count
		}
		if total != len(records) {
			t.Fatalf("%s: expected %d records across buckets, got %d", g, len(records), total)
		}
	}
}

func TestAggregateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	points := AggregateIn([]model.AnalyticsRecord{rec(at(2024, time.February, 1, 2, 0), 10, 10)}, Monthly, loc)
	if points[0].Label != "Jan 2024" {
		t.Fatalf("expected the record to fall in January locally, got %q", points[0].Label)
	}
}

func TestParseGranularity(t *testing.T) {
	for _, g := range Granularities {
		got, err := ParseGranularity(g.String())
		if err != nil || got != g {
			t.Fatalf("round trip failed for %s: %v %v", g, got, err)
		}
	}
	if _, err := ParseGranularity("yearly"); !errors.Is(err, model.ErrUnknownGranularity) {
		t.Fatalf("expected unknown granularity error, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	records := []model.AnalyticsRecord{
		rec(at(2024, time.January, 2, 0, 0), 80, 95),
		rec(at(2024, time.January, 3, 0, 0), 61, 91),
		rec(at(2024, time.January, 1, 0, 0), 40, 80),
	}
	s := Summarize(records)
	if s.Sessions != 3 || s.LatestWPM != 61 || s.BestWPM != 80 || s.AverageWPM != 60 || s.AverageAccuracy != 89 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if empty := Summarize(nil); empty != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

// Package progress buckets historical results into chart-ready series.
package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/tempotype/internal/model"
)

// Granularity is the bucketing resolution of a series.
type Granularity int

const (
	Monthly Granularity = iota
	Weekly
	Daily
	Hourly
	Minutely
)

// Granularities lists every granularity from coarsest to finest.
var Granularities = []Granularity{Monthly, Weekly, Daily, Hourly, Minutely}

func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "monthly"
	case Weekly:
		return "weekly"
	case Daily:
		return "daily"
	case Hourly:
		return "hourly"
	case Minutely:
		return "minutely"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity accepts the names returned by String.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month":
		return Monthly, nil
	case "weekly", "week":
		return Weekly, nil
	case "daily", "day":
		return Daily, nil
	case "hourly", "hour":
		return Hourly, nil
	case "minutely", "minute":
		return Minutely, nil
	default:
		return 0, fmt.Errorf("%w: %q", model.ErrUnknownGranularity, s)
	}
}

// bucketFunc maps a timestamp to the start of its bucket and the label.
type bucketFunc func(t time.Time) (time.Time, string)

func (g Granularity) bucket() bucketFunc {
	switch g {
	case Monthly:
		return monthBucket
	case Weekly:
		return weekBucket
	case Daily:
		return dayBucket
	case Hourly:
		return hourBucket
	default:
		return minuteBucket
	}
}

func monthBucket(t time.Time) (time.Time, string) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, t.Format("Jan 2006")
}

func dayBucket(t time.Time) (time.Time, string) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, t.Format("2 Jan 2006")
}

func hourBucket(t time.Time) (time.Time, string) {
	start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return start, t.Format("3 PM, 2 Jan 2006")
}

func minuteBucket(t time.Time) (time.Time, string) {
	return t, t.Format("3:04 PM, 2 Jan 2006")
}

func weekBucket(t time.Time) (time.Time, string) {
	week := WeekOfYear(t)
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	start := jan1.AddDate(0, 0, (week-1)*7-int(jan1.Weekday()))
	if start.Before(jan1) {
		start = jan1
	}
	return start, fmt.Sprintf("Week %d, %d", week, t.Year())
}

// WeekOfYear numbers Sunday-started weeks, with week 1 containing
// January 1: ceil((yearDay + jan1Weekday) / 7).
func WeekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	n := t.YearDay() + int(jan1.Weekday())
	return (n + 6) / 7
}

package progress

import "github.com/verte-zerg/tempotype/internal/model"

// Summary holds the headline numbers shown above the progress chart.
type Summary struct {
	Sessions        int `json:"sessions"`
	LatestWPM       int `json:"latestWpm"`
	BestWPM         int `json:"bestWpm"`
	AverageWPM      int `json:"averageWpm"`
	AverageAccuracy int `json:"averageAccuracy"`
}

// Summarize computes headline numbers over the valid records.
func Summarize(records []model.AnalyticsRecord) Summary {
	var (
		s       Summary
		sumWPM  float64
		sumAcc  float64
		latest  model.AnalyticsRecord
		bestWPM float64
	)
	for _, rec := range records {
		if !valid(rec) {
			continue
		}
		s.Sessions++
		sumWPM += rec.WPM
		sumAcc += rec.Accuracy
		if rec.WPM > bestWPM {
			bestWPM = rec.WPM
		}
		if !rec.Timestamp.Before(latest.Timestamp) {
			latest = rec
		}
	}
	if s.Sessions == 0 {
		return s
	}
	n := float64(s.Sessions)
	s.LatestWPM = roundHalfUp(latest.WPM)
	s.BestWPM = roundHalfUp(bestWPM)
	s.AverageWPM = roundHalfUp(sumWPM / n)
	s.AverageAccuracy = roundHalfUp(sumAcc / n)
	return s
}

package core

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// CategoryCount is the number of records holding a categorical value.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnMean is the arithmetic mean of a numeric column.
// Mean is nil when there is no data to average.
type ColumnMean struct {
	Column Column   `json:"column"`
	Label  string   `json:"label"`
	Mean   *float64 `json:"mean"`
}

// DelayMeans holds the mean of both delay columns.
type DelayMeans struct {
	Departure *float64 `json:"departure"`
	Arrival   *float64 `json:"arrival"`
}

// SummaryView is the derived, read-only statistics over a Dataset.
type SummaryView struct {
	Rows               int             `json:"rows"`
	SatisfactionCounts []CategoryCount `json:"satisfactionCounts"`
	RatingMeans        []ColumnMean    `json:"ratingMeans"`
	DelayMeans         DelayMeans      `json:"delayMeans"`
}

// CountsMap returns the satisfaction counts keyed by value.
func (v SummaryView) CountsMap() map[string]int {
	out := make(map[string]int, len(v.SatisfactionCounts))
	for _, c := range v.SatisfactionCounts {
		out[c.Value] = c.Count
	}
	return out
}

// Summarize computes satisfaction counts, rating means, and delay means over d.
// Means are nil for an empty dataset.
func Summarize(d *Dataset) SummaryView {
	view := SummaryView{
		Rows:               d.Len(),
		SatisfactionCounts: satisfactionCounts(d),
		RatingMeans:        make([]ColumnMean, 0, len(RatingColumns)),
	}

	columns := make(map[Column][]float64, len(RatingColumns))
	var departures, arrivals []float64
	for _, rec := range d.All() {
		for _, col := range RatingColumns {
			v, _ := rec.Int(col)
			columns[col] = append(columns[col], float64(v))
		}
		if validDelay(rec.DepartureDelay) {
			departures = append(departures, rec.DepartureDelay.Float64)
		}
		if validDelay(rec.ArrivalDelay) {
			arrivals = append(arrivals, rec.ArrivalDelay.Float64)
		}
	}

	for _, col := range RatingColumns {
		view.RatingMeans = append(view.RatingMeans, ColumnMean{
			Column: col,
			Label:  LabelFor(col),
			Mean:   mean(columns[col]),
		})
	}
	view.DelayMeans = DelayMeans{
		Departure: mean(departures),
		Arrival:   mean(arrivals),
	}
	return view
}

// satisfactionCounts counts records per satisfaction value, ordered by count
// descending then value ascending.
func satisfactionCounts(d *Dataset) []CategoryCount {
	counts := make(map[string]int)
	for _, rec := range d.All() {
		counts[rec.Satisfaction]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, CategoryCount{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := stat.Mean(values, nil)
	return &m
}

package core

import (
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cleaner turns a raw Dataset into an analysis-ready one.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a Cleaner that reports progress to logger.
// A nil logger falls back to slog.Default().
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean runs the cleaning steps in order:
//
//  1. drop rows with a missing arrival delay
//  2. cap both delay columns at their 99th percentile over the remaining rows
//  3. record the observed domain of every categorical column
//
// raw is not modified. Returns *SchemaError if raw lacks a required column and
// *EmptyDatasetError if step 1 leaves no rows.
func (c *Cleaner) Clean(raw *Dataset) (*Dataset, CleanReport, error) {
	if _, err := ValidateHeaders(raw.Columns(), Schema); err != nil {
		return nil, CleanReport{}, err
	}

	report := CleanReport{RowsIn: raw.Len()}

	kept := make([]Record, 0, raw.Len())
	for _, rec := range raw.All() {
		if !validDelay(rec.ArrivalDelay) {
			continue
		}
		if !validDelay(rec.DepartureDelay) {
			rec.DepartureDelay = pgtype.Float8{}
		}
		kept = append(kept, rec)
	}
	report.RowsDropped = report.RowsIn - len(kept)
	c.logger.Info("dropped rows with missing arrival delay",
		"dropped", report.RowsDropped,
		"remaining", len(kept),
	)

	if len(kept) == 0 {
		return nil, report, &EmptyDatasetError{RowsIn: report.RowsIn}
	}

	var departures, arrivals []float64
	for _, rec := range kept {
		if validDelay(rec.DepartureDelay) {
			departures = append(departures, rec.DepartureDelay.Float64)
		} else {
			report.DepartureNull++
		}
		arrivals = append(arrivals, rec.ArrivalDelay.Float64)
	}

	report.ArrivalCap = Percentile(arrivals, CapPercentile)
	if len(departures) > 0 {
		report.DepartureCap = Percentile(departures, CapPercentile)
	}

	for i := range kept {
		rec := &kept[i]
		if validDelay(rec.DepartureDelay) && rec.DepartureDelay.Float64 > report.DepartureCap {
			rec.DepartureDelay.Float64 = report.DepartureCap
		}
		if rec.ArrivalDelay.Float64 > report.ArrivalCap {
			rec.ArrivalDelay.Float64 = report.ArrivalCap
		}
	}
	c.logger.Info("capped delay outliers at 99th percentile",
		"departure_cap", report.DepartureCap,
		"arrival_cap", report.ArrivalCap,
		"departure_missing", report.DepartureNull,
	)

	domains := observeDomains(kept)
	report.DomainSizes = make(map[Column]int, len(domains))
	for col, values := range domains {
		report.DomainSizes[col] = len(values)
	}
	report.RowsOut = len(kept)
	c.logger.Info("categorical columns restricted to observed values",
		"columns", len(domains),
		"rows", report.RowsOut,
	)

	cleaned := &Dataset{
		records: kept,
		columns: raw.Columns(),
		domains: domains,
	}
	return cleaned, report, nil
}

// observeDomains collects the distinct values of every categorical column in
// order of first appearance.
func observeDomains(records []Record) map[Column][]string {
	domains := make(map[Column][]string, len(CategoricalColumns))
	for _, col := range CategoricalColumns {
		seen := make(map[string]bool)
		values := []string{}
		for _, rec := range records {
			v := rec.Category(col)
			if seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		domains[col] = values
	}
	return domains
}

// validDelay reports whether a delay holds a usable number.
func validDelay(v pgtype.Float8) bool {
	return v.Valid && !math.IsNaN(v.Float64)
}

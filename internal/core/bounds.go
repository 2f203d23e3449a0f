package core

// bounds.go derives slider bounds and the initial FilterSpec from a cleaned
// Dataset.
//
// Configured default ranges are clamped into the observed range of each
// column. A default range that does not overlap the observed range at all is
// replaced by the full observed range.

// Bounds holds the observed [min, max] of each range-filtered column.
type Bounds struct {
	Age         IntRange `json:"age"`
	Distance    IntRange `json:"distance"`
	SeatComfort IntRange `json:"seatComfort"`
}

// Range returns the observed bounds for a numeric filter column.
func (b Bounds) Range(col Column) (IntRange, bool) {
	switch col {
	case ColAge:
		return b.Age, true
	case ColFlightDistance:
		return b.Distance, true
	case ColSeatComfort:
		return b.SeatComfort, true
	default:
		return IntRange{}, false
	}
}

// DefaultRanges are the preferred initial filter ranges before clamping.
type DefaultRanges struct {
	Age         IntRange
	Distance    IntRange
	SeatComfort IntRange
}

// StandardDefaults are the initial ranges the dashboard has always offered.
var StandardDefaults = DefaultRanges{
	Age:         IntRange{Min: 20, Max: 60},
	Distance:    IntRange{Min: 100, Max: 5000},
	SeatComfort: IntRange{Min: 0, Max: 5},
}

// ObservedBounds returns the observed min/max of Age, FlightDistance and
// SeatComfort. All ranges are zero for an empty dataset.
func ObservedBounds(d *Dataset) Bounds {
	var b Bounds
	first := true
	for _, rec := range d.All() {
		if first {
			b.Age = IntRange{Min: rec.Age, Max: rec.Age}
			b.Distance = IntRange{Min: rec.FlightDistance, Max: rec.FlightDistance}
			b.SeatComfort = IntRange{Min: rec.SeatComfort, Max: rec.SeatComfort}
			first = false
			continue
		}
		b.Age = widen(b.Age, rec.Age)
		b.Distance = widen(b.Distance, rec.FlightDistance)
		b.SeatComfort = widen(b.SeatComfort, rec.SeatComfort)
	}
	return b
}

func widen(r IntRange, v int) IntRange {
	return IntRange{Min: min(r.Min, v), Max: max(r.Max, v)}
}

// ClampRange restricts want to the observed range. If the two do not overlap
// the observed range is returned. A want with Min > Max is returned unchanged
// so that validation still reports it.
func ClampRange(want, observed IntRange) IntRange {
	if want.Min > want.Max {
		return want
	}
	lo := max(want.Min, observed.Min)
	hi := min(want.Max, observed.Max)
	if lo > hi {
		return observed
	}
	return IntRange{Min: lo, Max: hi}
}

// DefaultSpec returns a FilterSpec selecting every observed categorical value
// and the default ranges clamped to the observed bounds of d.
func DefaultSpec(d *Dataset, defaults DefaultRanges) FilterSpec {
	b := ObservedBounds(d)
	spec := FilterSpec{
		Age:         ClampRange(defaults.Age, b.Age),
		Distance:    ClampRange(defaults.Distance, b.Distance),
		SeatComfort: ClampRange(defaults.SeatComfort, b.SeatComfort),
	}
	for _, col := range CategoricalColumns {
		spec = spec.WithSet(col, NewValueSet(d.Domain(col)...))
	}
	return spec
}

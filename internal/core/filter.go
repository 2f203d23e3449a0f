package core

import (
	"encoding/json"
	"slices"
)

// ValueSet is a set of allowed categorical values.
// An empty or nil set admits nothing.
type ValueSet map[string]struct{}

// NewValueSet creates a ValueSet holding values.
func NewValueSet(values ...string) ValueSet {
	s := make(ValueSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is in the set.
func (s ValueSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the set's members sorted alphabetically.
func (s ValueSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s ValueSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes an array of values. null leaves the set nil.
func (s *ValueSet) UnmarshalJSON(b []byte) error {
	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	if values == nil {
		*s = nil
		return nil
	}
	*s = NewValueSet(values...)
	return nil
}

// IntRange is an inclusive [Min, Max] range.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether Min <= v <= Max.
func (r IntRange) Contains(v int) bool {
	return r.Min <= v && v <= r.Max
}

// FilterSpec holds the user's predicate configuration.
// A record survives Filter only if every predicate holds.
type FilterSpec struct {
	Satisfaction ValueSet `json:"satisfaction"`
	Gender       ValueSet `json:"gender"`
	CustomerType ValueSet `json:"customerType"`
	Class        ValueSet `json:"class"`
	TravelType   ValueSet `json:"travelType"`

	Age         IntRange `json:"age"`
	Distance    IntRange `json:"distance"`
	SeatComfort IntRange `json:"seatComfort"`
}

// Set returns the allowed values for a categorical column.
func (s FilterSpec) Set(col Column) ValueSet {
	switch col {
	case ColSatisfaction:
		return s.Satisfaction
	case ColGender:
		return s.Gender
	case ColCustomerType:
		return s.CustomerType
	case ColClass:
		return s.Class
	case ColTypeOfTravel:
		return s.TravelType
	default:
		return nil
	}
}

// WithSet returns a copy of s with the allowed values for col replaced.
func (s FilterSpec) WithSet(col Column, set ValueSet) FilterSpec {
	switch col {
	case ColSatisfaction:
		s.Satisfaction = set
	case ColGender:
		s.Gender = set
	case ColCustomerType:
		s.CustomerType = set
	case ColClass:
		s.Class = set
	case ColTypeOfTravel:
		s.TravelType = set
	}
	return s
}

// Range returns the range filter for a numeric column.
func (s FilterSpec) Range(col Column) (IntRange, bool) {
	switch col {
	case ColAge:
		return s.Age, true
	case ColFlightDistance:
		return s.Distance, true
	case ColSeatComfort:
		return s.SeatComfort, true
	default:
		return IntRange{}, false
	}
}

// WithRange returns a copy of s with the range for col replaced.
func (s FilterSpec) WithRange(col Column, r IntRange) FilterSpec {
	switch col {
	case ColAge:
		s.Age = r
	case ColFlightDistance:
		s.Distance = r
	case ColSeatComfort:
		s.SeatComfort = r
	}
	return s
}

// RangeColumns are the numeric columns a FilterSpec constrains.
var RangeColumns = []Column{ColAge, ColFlightDistance, ColSeatComfort}

// Validate returns *InvalidRangeError for the first range with Min > Max.
func (s FilterSpec) Validate() error {
	for _, col := range RangeColumns {
		r, _ := s.Range(col)
		if r.Min > r.Max {
			return &InvalidRangeError{Field: col, Min: r.Min, Max: r.Max}
		}
	}
	return nil
}

// Match reports whether rec satisfies every predicate of s.
func (s FilterSpec) Match(rec Record) bool {
	return s.Satisfaction.Contains(rec.Satisfaction) &&
		s.Gender.Contains(rec.Gender) &&
		s.CustomerType.Contains(rec.CustomerType) &&
		s.Class.Contains(rec.Class) &&
		s.TravelType.Contains(rec.TypeOfTravel) &&
		s.Age.Contains(rec.Age) &&
		s.Distance.Contains(rec.FlightDistance) &&
		s.SeatComfort.Contains(rec.SeatComfort)
}

// Filter returns a new Dataset holding the records of d that match spec, in
// their original order. d is not modified.
func Filter(d *Dataset, spec FilterSpec) (*Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	kept := make([]Record, 0, d.Len()/2)
	for _, rec := range d.All() {
		if spec.Match(rec) {
			kept = append(kept, rec)
		}
	}
	return d.derive(slices.Clip(kept)), nil
}

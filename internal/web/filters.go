package web

// filters.go converts between query parameters and core.FilterSpec.
//
// Categorical filters are repeated parameters. A parameter that is absent
// keeps the default selection (every observed value); a parameter that is
// present selects exactly its non-empty values, so "?gender=" selects
// nothing. The dashboard form sends an empty hidden input with every
// multi-select so that clearing a select is distinguishable from not
// submitting it.
//
// Range filters are whole numbers. An absent or blank bound keeps the
// default. User ranges are not clamped to the observed bounds, so an
// inverted range reaches Filter and is reported as InvalidRangeError.

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/airsat/internal/core"
)

// filterParam binds a query parameter name to a FilterSpec column.
type filterParam struct {
	column core.Column
	name   string
}

// categoryParams are the categorical filter parameters in form order.
var categoryParams = []filterParam{
	{core.ColSatisfaction, "satisfaction"},
	{core.ColGender, "gender"},
	{core.ColCustomerType, "customer_type"},
	{core.ColClass, "class"},
	{core.ColTypeOfTravel, "travel_type"},
}

// rangeParams are the numeric range parameters; each has _min and _max forms.
var rangeParams = []filterParam{
	{core.ColAge, "age"},
	{core.ColFlightDistance, "distance"},
	{core.ColSeatComfort, "seat_comfort"},
}

// filterValueError reports a range bound that is not a whole number.
type filterValueError struct {
	Param string
	Value string
}

func (e *filterValueError) Error() string {
	return fmt.Sprintf("invalid filter value for %s: %q", e.Param, e.Value)
}

// parseFilterSpec builds a FilterSpec from query values, starting from defaults.
// It does not validate ranges.
func parseFilterSpec(q url.Values, defaults core.FilterSpec) (core.FilterSpec, error) {
	spec := defaults

	for _, p := range categoryParams {
		raw, ok := q[p.name]
		if !ok {
			continue
		}
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		spec = spec.WithSet(p.column, core.NewValueSet(values...))
	}

	for _, p := range rangeParams {
		r, _ := spec.Range(p.column)
		lo, err := intParam(q, p.name+"_min", r.Min)
		if err != nil {
			return spec, err
		}
		hi, err := intParam(q, p.name+"_max", r.Max)
		if err != nil {
			return spec, err
		}
		spec = spec.WithRange(p.column, core.IntRange{Min: lo, Max: hi})
	}

	return spec, nil
}

// intParam parses a whole-number query parameter, returning def when it is
// absent or blank.
func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &filterValueError{Param: name, Value: raw}
	}
	return v, nil
}

// encodeFilterSpec renders spec as query values that parseFilterSpec reads
// back to the same spec. Every categorical parameter is written, with an
// empty value for an empty set.
func encodeFilterSpec(spec core.FilterSpec) url.Values {
	q := make(url.Values)
	for _, p := range categoryParams {
		values := spec.Set(p.column).Values()
		if len(values) == 0 {
			q[p.name] = []string{""}
			continue
		}
		q[p.name] = values
	}
	for _, p := range rangeParams {
		r, _ := spec.Range(p.column)
		q.Set(p.name+"_min", strconv.Itoa(r.Min))
		q.Set(p.name+"_max", strconv.Itoa(r.Max))
	}
	return q
}

// pageParams returns the 1-based page and the page size, bounded by max.
func pageParams(r *http.Request, defSize, maxSize int) (page, size int) {
	page = parsePositiveParam(r, "page", 1)
	size = min(parsePositiveParam(r, "page_size", defSize), maxSize)
	return page, size
}

// parsePositiveParam parses an integer query parameter with a default value.
func parsePositiveParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

package core

import (
	"iter"
	"slices"
)

// Dataset is an ordered, immutable collection of Records sharing the Schema.
//
// A Dataset is never modified after construction. Filter and Clean return new
// Datasets, so a single cleaned Dataset can be read by any number of
// goroutines without locking.
type Dataset struct {
	records []Record
	columns []string
	domains map[Column][]string
}

// NewDataset creates a raw Dataset from records read under the given source
// header. The records slice is copied.
func NewDataset(columns []string, records []Record) *Dataset {
	return &Dataset{
		records: slices.Clone(records),
		columns: slices.Clone(columns),
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the record at position i.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// All iterates over the records in order.
func (d *Dataset) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		if d == nil {
			return
		}
		for i, rec := range d.records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Slice returns a copy of records [from, to), clamped to the dataset bounds.
func (d *Dataset) Slice(from, to int) []Record {
	n := d.Len()
	from = max(0, min(from, n))
	to = max(from, min(to, n))
	if from == to {
		return nil
	}
	return slices.Clone(d.records[from:to])
}

// Columns returns the source header the dataset was read with.
func (d *Dataset) Columns() []string {
	return slices.Clone(d.columns)
}

// Cleaned reports whether the dataset has gone through Cleaner.Clean.
func (d *Dataset) Cleaned() bool {
	return d != nil && d.domains != nil
}

// Domain returns the observed value set of a categorical column, in order of
// first appearance. It is nil for a dataset that has not been cleaned.
func (d *Dataset) Domain(col Column) []string {
	if d == nil || d.domains == nil {
		return nil
	}
	return slices.Clone(d.domains[col])
}

// derive creates a dataset holding records that shares the receiver's header
// and categorical domains.
func (d *Dataset) derive(records []Record) *Dataset {
	if d == nil {
		return &Dataset{records: records}
	}
	return &Dataset{
		records: records,
		columns: d.columns,
		domains: d.domains,
	}
}

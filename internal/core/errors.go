package core

import (
	"fmt"
	"strings"
)

// SchemaError is returned when the source is missing required columns.
// It is fatal: no valid Dataset can be produced.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// EmptyDatasetError is returned when cleaning removes every row.
type EmptyDatasetError struct {
	RowsIn int
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("empty dataset: cleaning removed all %d rows", e.RowsIn)
}

// InvalidRangeError is returned for a FilterSpec whose range has Min > Max.
// It is recoverable: callers should re-prompt and keep the last valid view.
type InvalidRangeError struct {
	Field Column
	Min   int
	Max   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range for %s: min %d is greater than max %d", e.Field, e.Min, e.Max)
}

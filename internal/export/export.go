// Package export writes filtered datasets as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/airsat/internal/core"
	"github.com/xuri/excelize/v2"
)

// Format is a supported download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// SheetName is the worksheet exports are written to.
const SheetName = "Survey"

// flushInterval is how many CSV rows are buffered between flushes.
const flushInterval = 1000

// Write writes d to w in the given format.
func Write(w io.Writer, d *core.Dataset, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, d)
	case FormatXLSX:
		return WriteXLSX(w, d)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes the schema header followed by every record of d.
func WriteCSV(w io.Writer, d *core.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(core.SchemaHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range d.All() {
		if err := cw.Write(Cells(rec)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		if (i+1)%flushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes d as a single-sheet workbook using excelize's stream writer.
func WriteXLSX(w io.Writer, d *core.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := core.SchemaHeader()
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range d.All() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxValues(rec)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Cells formats a record in Schema order. Missing delays are empty strings.
func Cells(rec core.Record) []string {
	out := make([]string, 0, len(core.Schema))
	for _, spec := range core.Schema {
		switch spec.Type {
		case core.FieldCategorical:
			out = append(out, rec.Category(spec.Column))
		case core.FieldInteger:
			v, _ := rec.Int(spec.Column)
			out = append(out, strconv.Itoa(v))
		case core.FieldFloat:
			d := rec.Delay(spec.Column)
			if !d.Valid {
				out = append(out, "")
				continue
			}
			out = append(out, strconv.FormatFloat(d.Float64, 'f', -1, 64))
		}
	}
	return out
}

// xlsxValues is Cells with numeric cells kept numeric.
func xlsxValues(rec core.Record) []interface{} {
	out := make([]interface{}, 0, len(core.Schema))
	for _, spec := range core.Schema {
		switch spec.Type {
		case core.FieldCategorical:
			out = append(out, rec.Category(spec.Column))
		case core.FieldInteger:
			v, _ := rec.Int(spec.Column)
			out = append(out, v)
		case core.FieldFloat:
			d := rec.Delay(spec.Column)
			if !d.Valid {
				out = append(out, nil)
				continue
			}
			out = append(out, d.Float64)
		}
	}
	return out
}

package source

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/airsat/internal/core"
)

// nanValues are the cell values loaded as NA.
var nanValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// fromRecords converts a header row plus data rows into a raw Dataset.
// lines[i] is the 1-based source line of records[i] and is used in errors.
func fromRecords(records [][]string, lines []int) (*core.Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("invalid csv: no header row")
	}
	header := records[0]
	idx, err := core.ValidateHeaders(header, core.Schema)
	if err != nil {
		return nil, err
	}
	if len(records) == 1 {
		return core.NewDataset(header, nil), nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("invalid csv: %w", df.Err)
	}

	out := make([]core.Record, 0, df.Nrow())
	for row := 0; row < df.Nrow(); row++ {
		rec, err := recordAt(df, idx, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lines[row+1], err)
		}
		out = append(out, rec)
	}
	return core.NewDataset(header, out), nil
}

func recordAt(df dataframe.DataFrame, idx core.HeaderIndex, row int) (core.Record, error) {
	var rec core.Record
	for _, spec := range core.Schema {
		pos, _ := idx.Position(spec)
		if err := setField(&rec, spec, df.Elem(row, pos)); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func setField(rec *core.Record, spec core.FieldSpec, e series.Element) error {
	switch dst := rec.FieldPtr(spec.Column).(type) {
	case *string:
		// Categorical values are kept verbatim; " satisfied" and "satisfied"
		// are distinct domain values.
		if !e.IsNA() {
			*dst = e.String()
		}
	case *int:
		if e.IsNA() {
			return fmt.Errorf("invalid number in %s: empty cell", spec.Name)
		}
		n, err := parseInt(core.CleanCell(e.String()))
		if err != nil {
			return fmt.Errorf("invalid number in %s: %q", spec.Name, e.String())
		}
		*dst = n
	case *pgtype.Float8:
		if e.IsNA() {
			*dst = pgtype.Float8{}
			return nil
		}
		v, err := strconv.ParseFloat(core.CleanCell(e.String()), 64)
		if err != nil {
			return fmt.Errorf("invalid number in %s: %q", spec.Name, e.String())
		}
		*dst = core.Float8(v)
	}
	return nil
}

// parseInt accepts plain integers and integral floats such as "3.0", which
// spreadsheet exports produce for whole-number cells.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %s", s)
	}
	return int(f), nil
}

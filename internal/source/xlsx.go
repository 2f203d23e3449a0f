package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/airsat/internal/core"
)

// XLSXFile loads the survey from an Excel workbook.
type XLSXFile struct {
	Path  string
	Sheet string // defaults to the first sheet
}

// Load opens the workbook and parses the configured sheet.
func (s XLSXFile) Load(ctx context.Context) (*core.Dataset, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open survey workbook: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readWorkbook(f, s.Sheet)
}

func (s XLSXFile) String() string {
	if s.Sheet == "" {
		return "xlsx:" + s.Path
	}
	return "xlsx:" + s.Path + "#" + s.Sheet
}

// ReadXLSX parses a workbook from r.
func ReadXLSX(r io.Reader, sheet string) (*core.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) (*core.Dataset, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("invalid xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: sheet %q: %w", sheet, err)
	}

	// GetRows omits trailing empty cells, so rows are padded to the header
	// width. Blank rows are skipped like blank lines in a CSV file.
	var records [][]string
	var lines []int
	width := 0
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if width == 0 {
			width = len(row)
		}
		records = append(records, fitWidth(row, width))
		lines = append(lines, i+1)
	}
	return fromRecords(records, lines)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func fitWidth(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/airsat/internal/core"
)

// CSVFile loads the survey from a delimited text file.
type CSVFile struct {
	Path      string
	Delimiter rune // defaults to ','
}

// Load reads and parses the file.
func (s CSVFile) Load(ctx context.Context) (*core.Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open survey file: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadCSV(f, s.Delimiter)
}

func (s CSVFile) String() string {
	return "csv:" + s.Path
}

// ReadCSV parses delimited text with a header row. A UTF-8 byte order mark
// is skipped and invalid UTF-8 is replaced. Blank lines are ignored.
func ReadCSV(r io.Reader, delimiter rune) (*core.Dataset, error) {
	data, err := readSanitized(r)
	if err != nil {
		return nil, fmt.Errorf("read survey file: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.LazyQuotes = true

	var records [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return fromRecords(records, lines)
}

package source

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/airsat/internal/core"
)

// Loader reads the raw survey dataset once.
type Loader interface {
	Load(ctx context.Context) (*core.Dataset, error)
	String() string
}

// Options selects and configures a Loader.
type Options struct {
	Path        string
	Sheet       string
	Delimiter   rune
	DatabaseURL string
	Table       string
	OrderBy     string
	MaxConns    int
}

// ErrNoSource is returned when Options name neither a file nor a table.
var ErrNoSource = errors.New("no data source configured: set DATA_PATH or DATA_TABLE")

// New returns the Loader for opts. A table takes precedence over a path;
// a path ending in .xlsx is read as a workbook, anything else as delimited text.
func New(opts Options) (Loader, error) {
	switch {
	case opts.Table != "":
		if opts.DatabaseURL == "" {
			return nil, errors.New("DATA_TABLE requires DATABASE_URL")
		}
		return PostgresTable{
			URL:      opts.DatabaseURL,
			Table:    opts.Table,
			MaxConns: int32(opts.MaxConns),
			OrderBy:  opts.OrderBy,
		}, nil
	case strings.EqualFold(filepath.Ext(opts.Path), ".xlsx"):
		return XLSXFile{Path: opts.Path, Sheet: opts.Sheet}, nil
	case opts.Path != "":
		return CSVFile{Path: opts.Path, Delimiter: opts.Delimiter}, nil
	default:
		return nil, ErrNoSource
	}
}

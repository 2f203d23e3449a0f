package source

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"csv", Options{Path: "data/airline.csv"}, "csv:data/airline.csv"},
		{"xlsx", Options{Path: "data/airline.XLSX", Sheet: "Survey"}, "xlsx:data/airline.XLSX#Survey"},
		{"table wins", Options{Path: "a.csv", Table: "survey", DatabaseURL: "postgres://localhost/db"}, "postgres:survey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l.String() != tt.want {
				t.Errorf("String() = %q, want %q", l.String(), tt.want)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("empty options error = %v, want ErrNoSource", err)
	}
	if _, err := New(Options{Table: "survey"}); err == nil {
		t.Error("table without database URL should fail")
	}
}

func TestNew_PostgresPoolSize(t *testing.T) {
	l, err := New(Options{Table: "survey", DatabaseURL: "postgres://localhost/db", MaxConns: 3})
	if err != nil {
		t.Fatal(err)
	}
	pt, ok := l.(PostgresTable)
	if !ok || pt.MaxConns != 3 {
		t.Errorf("loader = %#v, want PostgresTable with MaxConns 3", l)
	}
}

func TestNew_PostgresOrderBy(t *testing.T) {
	l, err := New(Options{Table: "survey", DatabaseURL: "postgres://localhost/db", OrderBy: "id"})
	if err != nil {
		t.Fatal(err)
	}
	if pt, ok := l.(PostgresTable); !ok || pt.OrderBy != "id" {
		t.Errorf("loader = %#v, want PostgresTable ordered by id", l)
	}
}

func TestPostgresTable_BadURL(t *testing.T) {
	_, err := PostgresTable{URL: "postgres://localhost:notaport/db", Table: "survey"}.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "parse database URL") {
		t.Errorf("Load() error = %v, want parse failure", err)
	}
}

package core

// validation.go checks a source header against the Schema.
//
// Header matching is case-insensitive after CleanCell, so spreadsheet exports
// with formula prefixes or stray quotes around header names still load.

import (
	"strings"
)

// HeaderIndex maps column names (lowercase) to their position in a source row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// Position returns the header position of a schema column.
func (h HeaderIndex) Position(spec FieldSpec) (int, bool) {
	pos, ok := h[strings.ToLower(spec.Name)]
	return pos, ok
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="..."), and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// ValidateHeaders checks that every required schema column exists in headers.
// Returns the header index, or a *SchemaError listing the missing columns.
func ValidateHeaders(headers []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx.Position(spec); !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}

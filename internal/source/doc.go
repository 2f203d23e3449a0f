// Package source loads the raw survey dataset from a delimited text file, an
// Excel workbook, or a Postgres table.
//
// Every loader produces an uncleaned *core.Dataset whose Columns are the
// source header names. Missing required columns are reported as
// *core.SchemaError; a numeric cell that cannot be parsed is reported with
// its line (file sources) or row number (database sources).
//
// File sources are parsed with gota: cells are loaded as strings with empty
// values treated as NA, then converted per the core.Schema field types.
package source

// Package core provides the analysis logic for the airline satisfaction dashboard.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around a small number of concepts:
//
//   - Schema: every survey column has a [FieldSpec] describing its header,
//     database column, and type. [ValidateHeaders] checks a source header
//     against the schema.
//   - Dataset: an ordered, immutable collection of [Record] values. A cleaned
//     Dataset is built once at startup and shared by reference afterwards.
//   - Cleaner: [Cleaner.Clean] turns a raw Dataset into an analysis-ready one.
//   - Filter: [Filter] applies a [FilterSpec] and returns a new Dataset.
//   - Summarize: [Summarize] computes a [SummaryView] over a Dataset.
//   - Render: [Render] is the single entry point the presentation layer calls
//     on every input event (filter, then summarize).
//
// # Cleaning
//
// Cleaning runs these steps in order:
//
//  1. Drop rows with a missing arrival delay
//  2. Cap both delay columns at their 99th percentile (linear interpolation),
//     computed over the rows that survived step 1
//  3. Record the observed value set of every categorical column
//
// # Error Handling
//
// Domain failures are typed: [SchemaError] and [EmptyDatasetError] are fatal
// at load time, [InvalidRangeError] is recoverable and should re-prompt the
// user. Technical errors are mapped to user-friendly messages using
// [MapError]. Each error category has a unique code for support reference:
//
//   - DATA001-DATA002: Dataset errors (schema, empty after cleaning)
//   - FLT001-FLT002: Filter errors (ranges, unparsable values)
//   - FILE001-FILE003: Source errors (missing file, format, numeric cells)
package core

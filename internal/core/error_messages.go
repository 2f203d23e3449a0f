// Package core provides the analysis logic for the airline satisfaction dashboard.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Typed errors are matched first (errors.As); anything else is
// matched case-insensitively against message patterns.
//
// # Dataset Errors (DATA001-DATA099)
//
//	DATA001 - Missing column: The survey file is missing required columns
//	          Action: Check the file header against the expected columns
//	          Type: *SchemaError
//
//	DATA002 - Empty dataset: No rows remain after cleaning
//	          Action: Check that the file contains arrival delay values
//	          Type: *EmptyDatasetError
//
// # Filter Errors (FLT001-FLT099)
//
//	FLT001 - Invalid range: A range minimum is greater than its maximum
//	         Action: Adjust the range so the minimum is not above the maximum
//	         Type: *InvalidRangeError
//
//	FLT002 - Invalid filter value: A numeric filter value could not be read
//	         Action: Enter whole numbers for range filters
//	         Patterns: "invalid filter value"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File not found: The survey file could not be opened
//	          Action: Check the DATA_PATH setting
//	          Patterns: "no such file"
//
//	FILE002 - Invalid format: The survey file could not be parsed
//	          Action: Ensure the file is a delimited text or .xlsx file
//	          Patterns: "invalid csv", "invalid xlsx"
//
//	FILE003 - Invalid number: A numeric cell could not be parsed
//	          Action: Check the reported line for non-numeric values
//	          Patterns: "invalid number"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	schemaMessage = UserMessage{
		Message: "The survey file is missing required columns",
		Action:  "Check the file header against the expected columns",
		Code:    "DATA001",
	}
	emptyMessage = UserMessage{
		Message: "No rows remain after cleaning",
		Action:  "Check that the file contains arrival delay values",
		Code:    "DATA002",
	}
	rangeMessage = UserMessage{
		Message: "A range minimum is greater than its maximum",
		Action:  "Adjust the range so the minimum is not above the maximum",
		Code:    "FLT001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid filter value",
		msg: UserMessage{
			Message: "A filter value could not be read",
			Action:  "Enter whole numbers for range filters",
			Code:    "FLT002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The survey file could not be opened",
			Action:  "Check the DATA_PATH setting",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The survey file could not be parsed",
			Action:  "Ensure the file is a delimited text or .xlsx file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "The survey file could not be parsed",
			Action:  "Ensure the file is a delimited text or .xlsx file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "A numeric cell could not be parsed",
			Action:  "Check the reported line for non-numeric values",
			Code:    "FILE003",
		},
	},
	{
		pattern: "too many concurrent exports",
		msg: UserMessage{
			Message: "The server is busy preparing other downloads",
			Action:  "Please try the download again in a few seconds",
			Code:    "EXP001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error into a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var schemaErr *SchemaError
	var emptyErr *EmptyDatasetError
	var rangeErr *InvalidRangeError
	switch {
	case errors.As(err, &schemaErr):
		return schemaMessage
	case errors.As(err, &emptyErr):
		return emptyMessage
	case errors.As(err, &rangeErr):
		msg := rangeMessage
		msg.Message = fmt.Sprintf("%s range: minimum %d is greater than maximum %d",
			LabelFor(rangeErr.Field), rangeErr.Min, rangeErr.Max)
		return msg
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders a mapped error as a single line for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error maps to a specific code rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

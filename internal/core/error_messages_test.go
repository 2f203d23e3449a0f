package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"schema", &SchemaError{Missing: []string{"Gender"}}, "DATA001"},
		{"wrapped schema", fmt.Errorf("load: %w", &SchemaError{Missing: []string{"Age"}}), "DATA001"},
		{"empty", &EmptyDatasetError{RowsIn: 3}, "DATA002"},
		{"range", &InvalidRangeError{Field: ColAge, Min: 60, Max: 20}, "FLT001"},
		{"filter value", errors.New(`invalid filter value for age_min: "abc"`), "FLT002"},
		{"missing file", errors.New("open survey.csv: no such file or directory"), "FILE001"},
		{"bad csv", errors.New("invalid csv: wrong number of fields"), "FILE002"},
		{"bad xlsx", errors.New("Invalid XLSX: zip: not a valid zip file"), "FILE002"},
		{"bad number", errors.New("line 4: invalid number in Age"), "FILE003"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"busy export", errors.New("too many concurrent exports, please try again later"), "EXP001"},
		{"unknown", errors.New("something broke"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.code {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, msg.Code, tt.code)
			}
			if msg.Message == "" || msg.Action == "" {
				t.Errorf("MapError(%v) has empty text: %+v", tt.err, msg)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	if msg := MapError(nil); msg != (UserMessage{}) {
		t.Errorf("MapError(nil) = %+v, want zero", msg)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestMapError_RangeMentionsField(t *testing.T) {
	msg := MapError(&InvalidRangeError{Field: ColFlightDistance, Min: 5000, Max: 100})
	if !strings.Contains(msg.Message, "Flight Distance") || !strings.Contains(msg.Message, "5000") {
		t.Errorf("Message = %q, want field label and values", msg.Message)
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(&EmptyDatasetError{RowsIn: 1})
	if !strings.Contains(got, "DATA002") || !strings.Contains(got, emptyMessage.Action) {
		t.Errorf("FormatUserError() = %q", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil is not user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unmatched error is not user facing")
	}
	if !IsUserFacing(&InvalidRangeError{Field: ColAge}) {
		t.Error("range error is user facing")
	}
}

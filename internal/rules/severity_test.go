package rules

import (
	"encoding/json"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityInformation, "information"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityParseError, "parseerror"},
		{Severity(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.s.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSeverity_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(SeverityWarning)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `"warning"` {
		t.Errorf("Marshal = %s, want %s", data, `"warning"`)
	}
}

func TestSeverity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{`"error"`, SeverityError, false},
		{`"warning"`, SeverityWarning, false},
		{`"warn"`, SeverityWarning, false},
		{`"information"`, SeverityInformation, false},
		{`"info"`, SeverityInformation, false},
		{`"ParseError"`, SeverityParseError, false},
		{`"ERROR"`, SeverityError, false},
		{`"style"`, SeverityError, true},
		{`123`, SeverityError, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			var s Severity
			err := json.Unmarshal([]byte(tc.input), &s)
			if (err != nil) != tc.wantErr {
				t.Errorf("Unmarshal error = %v, wantErr %v", err, tc.wantErr)
				return
			}
			if !tc.wantErr && s != tc.want {
				t.Errorf("Unmarshal = %v, want %v", s, tc.want)
			}
		})
	}
}

func TestSeverity_Ordering(t *testing.T) {
	if !SeverityError.IsMoreSevereThan(SeverityWarning) {
		t.Error("error should be more severe than warning")
	}
	if !SeverityWarning.IsMoreSevereThan(SeverityInformation) {
		t.Error("warning should be more severe than information")
	}
	if !SeverityWarning.IsAtLeast(SeverityWarning) {
		t.Error("warning should be at least warning")
	}
	if SeverityInformation.IsAtLeast(SeverityWarning) {
		t.Error("information should not be at least warning")
	}
}

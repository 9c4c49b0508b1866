// Package rules provides the rule contract, the diagnostic and correction
// model and the rule registry for the PowerShell linter.
package rules

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// Severity classifies a diagnostic.
//
// The order Information < Warning < Error < ParseError is what consumers use
// to filter and sort; nothing in the rule engine enforces it.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type Severity int

const (
	// SeverityInformation is a suggestion or best practice recommendation.
	SeverityInformation Severity = iota
	// SeverityWarning is a significant issue that may cause problems.
	SeverityWarning
	// SeverityError is a critical issue.
	SeverityError
	// SeverityParseError is reserved for findings raised while the host parsed
	// the script; rules do not emit it.
	SeverityParseError
)

// SeverityOff is the config value that disables a rule. It is not a
// Severity: a rule configured "off" never produces diagnostics.
const SeverityOff = "off"

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInformation:
		return "information"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityParseError:
		return "parseerror"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity string into a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "information", "info":
		return SeverityInformation, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "parseerror":
		return SeverityParseError, nil
	default:
		return SeverityError, errors.Newf("unknown severity: %q", s)
	}
}

// IsAtLeast returns true if s is at least as severe as threshold.
func (s Severity) IsAtLeast(threshold Severity) bool {
	return s >= threshold
}

// IsMoreSevereThan returns true if s is more severe than other.
func (s Severity) IsMoreSevereThan(other Severity) bool {
	return s > other
}

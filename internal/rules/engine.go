package rules

import "strings"

// Names of the diagnostics the linter raises about its own run rather than
// about the script.
const (
	// ConfigurationErrorName reports rule options that failed to bind.
	ConfigurationErrorName = "PSConfigurationError"

	// RuleExecutionErrorName reports a rule that failed or panicked.
	RuleExecutionErrorName = "PSRuleExecutionError"

	// ParseErrorName reports a syntax error from the host parser.
	ParseErrorName = "PSParseError"

	// FileValidationErrorName reports a script rejected before analysis.
	FileValidationErrorName = "PSFileValidationError"
)

// IsEngineRule reports whether name belongs to a linter-raised diagnostic.
// Such diagnostics cannot be disabled through rule selection.
func IsEngineRule(name string) bool {
	switch strings.ToLower(name) {
	case strings.ToLower(ConfigurationErrorName),
		strings.ToLower(RuleExecutionErrorName),
		strings.ToLower(ParseErrorName),
		strings.ToLower(FileValidationErrorName):
		return true
	}
	return false
}

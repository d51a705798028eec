// Package redact strips credentials and other sensitive values from strings
// before they are logged or returned in error responses. Provider errors and
// driver errors routinely echo connection strings and API keys, so every
// failure log in the service goes through Error.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders written in place of redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
)

// rule is one pattern and its replacement template. Rules run in order.
type rule struct {
	re   *regexp.Regexp
	repl string
}

var rules = []rule{
	// userinfo in connection strings
	{
		re:   regexp.MustCompile(`(?i)\b(postgres(?:ql)?|rediss?|mysql|mongodb)://[^@\s/]+@`),
		repl: "${1}://" + RedactedCredentialPlaceholder + "@",
	},
	// Google API keys
	{
		re:   regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),
		repl: RedactedKeyPlaceholder,
	},
	{
		re:   regexp.MustCompile(`(?i)\b(bearer)\s+[A-Za-z0-9_\-.~+/=]+`),
		repl: "${1} " + RedactedTokenPlaceholder,
	},
	{
		re:   regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret|key)(\s*[:=]\s*['"]?)[A-Za-z0-9_\-.~+/]{8,}`),
		repl: "${1}${2}" + RedactedKeyPlaceholder,
	},
	{
		re:   regexp.MustCompile(`(?i)\b(password|passwd|pwd)(\s*[:=]\s*['"]?)[^'"&\s]+`),
		repl: "${1}${2}" + RedactedCredentialPlaceholder,
	},
	{
		re:   regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		repl: RedactedEmailPlaceholder,
	},
	// absolute file paths with at least two segments
	{
		re:   regexp.MustCompile(`(^|\s)(?:/[\w.-]+){2,}`),
		repl: "${1}" + RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from input.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.repl)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// URL returns raw with any password replaced, suitable for startup logs.
// Unparseable input is redacted entirely.
func URL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return RedactionPlaceholder
	}
	return u.Redacted()
}

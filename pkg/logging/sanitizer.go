package logging

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// MaxQueryLogLength is the maximum length of a SQL statement to log.
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"

	// redactedMarker survives URL encoding unchanged and is swapped for RedactedText afterwards.
	redactedMarker = "__redacted__"
)

var (
	// password=xxx, pwd=xxx, pass=xxx in key/value DSNs and query strings
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@ inside a URI, used when the URI does not parse
	uriCredentialsPattern = regexp.MustCompile(`://[^:/@\s]+:[^@\s]+@`)

	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-_.]+`)

	// OpenAI (sk-...), Groq (gsk_...) and Anthropic (sk-ant-...) style keys
	providerKeyPattern = regexp.MustCompile(`\b(sk-ant-|sk-|gsk_)[A-Za-z0-9\-_]{16,}`)

	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9\-_]{16,}`)
)

// SanitizeConnectionString hides the password of a database connection descriptor
// while keeping user, host and database so log lines stay useful.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" && u.Host != "" {
		if u.User != nil {
			if _, hasPassword := u.User.Password(); hasPassword {
				u.User = url.UserPassword(u.User.Username(), redactedMarker)
			}
		}
		q := u.Query()
		if q.Has("password") {
			q.Set("password", redactedMarker)
			u.RawQuery = q.Encode()
		}
		return strings.ReplaceAll(u.String(), redactedMarker, RedactedText)
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return uriCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
}

// SanitizeError returns the error text with credentials and API keys removed.
// Use this before logging any error from database or LLM operations.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText applies the error redaction rules to arbitrary text.
func SanitizeText(s string) string {
	sanitized := passwordPattern.ReplaceAllString(s, "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = providerKeyPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = uriCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
	return sanitized
}

// SanitizeQuery truncates a SQL statement for logging and strips credential patterns.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := TruncateString(query, MaxQueryLogLength)
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// TruncateString truncates s to maxLen bytes and adds an ellipsis if needed.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package sql

import "strings"

const fence = "```"

// StripCodeFence removes a markdown code fence that a model may wrap around a
// statement: trim, drop a leading "```" opener with its info string ("sql",
// "postgresql", ...), drop a trailing "```" closer, trim again. Text without a
// fence is only trimmed.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, fence) {
		cleaned = dropInfoString(cleaned[len(fence):])
	}

	cleaned = strings.TrimSuffix(strings.TrimRight(cleaned, " \t\r\n"), fence)

	return strings.TrimSpace(cleaned)
}

// dropInfoString removes the language tag that follows an opener. "sql" is
// dropped wherever the statement starts; any other single word only when it
// fills the opener line, so "```SELECT 1" keeps its statement.
func dropInfoString(rest string) string {
	end := strings.IndexAny(rest, " \t\r\n")
	if end < 0 {
		end = len(rest)
	}
	word := rest[:end]

	switch {
	case word == "":
		return rest
	case strings.EqualFold(word, "sql"):
		return rest[end:]
	case end == len(rest) || rest[end] == '\n' || rest[end] == '\r':
		return rest[end:]
	default:
		return rest
	}
}

package tools

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorResponse is the structured error carried in a tool result.
// Errors the caller can act on (bad arguments, unreachable database) are
// returned as tool results so the client shows them instead of dropping them.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// sqlStateRegex matches PostgreSQL SQLSTATE codes in error messages like "(SQLSTATE 42601)".
var sqlStateRegex = regexp.MustCompile(`\(SQLSTATE ([0-9A-Z]{5})\)`)

// Prefixes of the failure text recorded by each pipeline stage.
const (
	schemaFailurePrefix    = "Error getting schema:"
	synthesisFailurePrefix = "Error generating SQL:"
	executionFailurePrefix = "Error executing SQL:"
)

// StageErrorCode maps a recorded stage failure to a short machine-readable code.
// Execution failures carrying a SQLSTATE get a code describing the SQL error.
// Returns "" for an empty failure.
func StageErrorCode(failure string) string {
	switch {
	case failure == "":
		return ""
	case strings.HasPrefix(failure, schemaFailurePrefix):
		return "schema_unavailable"
	case strings.HasPrefix(failure, synthesisFailurePrefix):
		return "sql_generation_failed"
	case strings.HasPrefix(failure, executionFailurePrefix):
		if matches := sqlStateRegex.FindStringSubmatch(failure); len(matches) >= 2 {
			return mapSQLStateToCode(matches[1])
		}
		return "sql_error"
	}
	return "unknown_error"
}

// mapSQLStateToCode maps a SQLSTATE code to a human-readable error code.
func mapSQLStateToCode(sqlState string) string {
	if len(sqlState) < 2 {
		return "sql_error"
	}

	switch sqlState {
	case "42601": // syntax_error
		return "syntax_error"
	case "42703": // undefined_column
		return "undefined_column"
	case "42P01": // undefined_table
		return "undefined_table"
	case "42883": // undefined_function
		return "undefined_function"
	case "42501": // insufficient_privilege
		return "permission_denied"
	case "23505": // unique_violation
		return "unique_violation"
	case "23503": // foreign_key_violation
		return "foreign_key_violation"
	case "23502": // not_null_violation
		return "not_null_violation"
	case "22012": // division_by_zero
		return "division_by_zero"
	case "22P02": // invalid_text_representation
		return "invalid_input"
	case "57014": // query_canceled
		return "query_canceled"
	}

	switch sqlState[:2] {
	case "22":
		return "data_exception"
	case "23":
		return "constraint_violation"
	case "08":
		return "connection_exception"
	}
	return "sql_error"
}

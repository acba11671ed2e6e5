package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/logging"
)

// MCPRequestLogger returns middleware that logs MCP JSON-RPC requests and responses
// with the tool name, sanitized arguments and error details.
// Pass nil logger to disable logging.
func MCPRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// If no logger provided, pass through without logging
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Read and restore request body for JSON-RPC parsing
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error("Failed to read MCP request body", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

			// Parse JSON-RPC request to extract tool name and params
			var rpcReq jsonRPCRequest
			if err := json.Unmarshal(bodyBytes, &rpcReq); err != nil {
				logger.Debug("Failed to parse MCP request JSON", zap.Error(err))
				// Continue anyway - not all requests may be valid JSON
			}

			// Extract tool name and sanitized arguments
			toolName := rpcReq.Params.Name
			sanitizedArgs := sanitizeArguments(rpcReq.Params.Arguments)

			logger.Debug("MCP request",
				zap.String("request_id", RequestID(r.Context())),
				zap.String("method", rpcReq.Method),
				zap.String("tool", toolName),
				zap.Any("arguments", sanitizedArgs),
			)

			// Capture response body using a recorder
			recorder := &mcpResponseRecorder{
				ResponseWriter: w,
				body:           &bytes.Buffer{},
			}
			start := time.Now()

			// Process the request
			next.ServeHTTP(recorder, r)

			duration := time.Since(start)

			// Parse JSON-RPC response to check for errors
			var rpcResp jsonRPCResponse
			if err := json.Unmarshal(recorder.body.Bytes(), &rpcResp); err != nil {
				logger.Debug("Failed to parse MCP response JSON", zap.Error(err))
				return
			}

			// Log based on success/failure
			if rpcResp.Error != nil {
				logger.Debug("MCP response error",
					zap.String("tool", toolName),
					zap.Int("error_code", rpcResp.Error.Code),
					zap.String("error_message", rpcResp.Error.Message),
					zap.Duration("duration", duration),
				)
			} else {
				logger.Debug("MCP response success",
					zap.String("tool", toolName),
					zap.Duration("duration", duration),
				)
			}
		})
	}
}

// jsonRPCRequest represents the structure of a JSON-RPC request for tools/call.
type jsonRPCRequest struct {
	Method string `json:"method"`
	Params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	} `json:"params"`
}

// jsonRPCResponse represents the structure of a JSON-RPC response.
type jsonRPCResponse struct {
	Result interface{}   `json:"result"`
	Error  *jsonRPCError `json:"error"`
}

// jsonRPCError represents an error in a JSON-RPC response.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// mcpResponseRecorder is a response writer that captures the response body.
type mcpResponseRecorder struct {
	http.ResponseWriter
	body *bytes.Buffer
}

// Write captures the response body and writes it to the underlying writer.
func (r *mcpResponseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Argument keys holding connection descriptors. Their passwords are masked, the rest is kept.
var descriptorKeys = []string{"uri", "dsn", "connection"}

var sensitiveKeywords = []string{"password", "secret", "token", "key", "credential"}

// maxArgumentLogLength caps string arguments such as questions in log lines.
const maxArgumentLogLength = 200

// sanitizeArguments masks connection descriptors, redacts sensitive fields
// and truncates long values.
func sanitizeArguments(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return nil
	}

	result := make(map[string]interface{}, len(args))
	for k, v := range args {
		lowerKey := strings.ToLower(k)

		if str, ok := v.(string); ok && containsAny(lowerKey, descriptorKeys) {
			result[k] = logging.SanitizeConnectionString(str)
			continue
		}
		if containsAny(lowerKey, sensitiveKeywords) {
			result[k] = logging.RedactedText
			continue
		}
		if str, ok := v.(string); ok {
			result[k] = logging.TruncateString(str, maxArgumentLogLength)
			continue
		}
		result[k] = v
	}
	return result
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package datasource

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxValueLength caps a rendered cell in schema sample rows.
const MaxValueLength = 100

// FormatValue renders a scanned database value as prompt text.
func FormatValue(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		if isPrintable(val) {
			s = string(val)
		} else {
			s = `\x` + hex.EncodeToString(val)
		}
	case string:
		s = val
	case time.Time:
		s = val.Format(time.RFC3339Nano)
	case bool:
		s = strconv.FormatBool(val)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	return s
}

// FormatSampleValue is FormatValue capped at MaxValueLength bytes.
func FormatSampleValue(v any) string {
	s := FormatValue(v)
	if len(s) > MaxValueLength {
		s = truncateUTF8(s, MaxValueLength)
	}
	return s
}

// FormatResult renders an execution result as the text handed to answer synthesis:
// a header line of column names, then one " | " separated line per row.
func FormatResult(r *QueryResult) string {
	if r == nil {
		return ""
	}
	if !r.ReturnsRows {
		return fmt.Sprintf("%d rows affected", r.RowsAffected)
	}

	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, " | "))
	for _, row := range r.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, " | "))
	}
	if len(r.Rows) == 0 {
		b.WriteString("\n(no rows)")
	}
	if r.Truncated {
		fmt.Fprintf(&b, "\n(showing first %d of %d rows)", len(r.Rows), r.TotalRows)
	}
	return b.String()
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 && c != '\n' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

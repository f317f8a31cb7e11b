package utils

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxStringLength bounds previews of response bodies in errors and logs.
const DefaultMaxStringLength = 500

// JSONToString encodes v as JSON, indented with two spaces when indent is
// true. A marshaling failure is reported as a JSON error object instead of a
// Go error so the result can always be printed.
func JSONToString(v any, indent bool) string {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{"error": "failed to marshal to JSON: " + err.Error()})
		return string(fallback)
	}
	return string(data)
}

// TruncateString cuts s to maxLen bytes and notes the original length.
// A maxLen of zero or less means [DefaultMaxStringLength].
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// TruncateStringDefault truncates s to [DefaultMaxStringLength].
func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}

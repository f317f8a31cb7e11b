package slogobs

import "strings"

// Format is the log line layout.
type Format string

const (
	// FormatCompact is one line per record with attributes as a JSON object:
	//
	//	2025-11-03 10:40:35 DEBUG Span ended {"span":"engine.run"}
	FormatCompact Format = "compact"

	// FormatJSON is one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat returns FormatJSON for "json" and FormatCompact otherwise.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatCompact
}

// FormatFromEnv reads PITCHLENS_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv("PITCHLENS_LOG_FORMAT", "LOG_FORMAT"))
}

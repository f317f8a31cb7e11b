package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errEmpty     = errors.New("empty input")
	errNotObject = errors.New("top-level value is not an object")

	// controlReplacer flattens LLM formatting that breaks string literals.
	controlReplacer = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")
)

// Normalize replaces newlines, carriage returns and tabs with spaces and
// strips commas left dangling before '}' or ']'. Text inside string literals
// keeps its commas.
func Normalize(raw string) string {
	return stripDanglingCommas(controlReplacer.Replace(raw))
}

func stripDanglingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				// Drop the comma and the blanks after it.
				i = j - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Extract normalizes raw, slices the first '{' through the last '}' when
// both exist in that order (the whole text otherwise) and parses the slice
// strictly as a JSON object.
func Extract(raw string) Result {
	normalized := strings.TrimSpace(Normalize(raw))

	candidate := normalized
	start := strings.Index(normalized, "{")
	end := strings.LastIndex(normalized, "}")
	if start != -1 && end > start {
		candidate = normalized[start : end+1]
	}

	fields, err := parseObject(candidate)
	if err != nil {
		return Unparseable(StageExtract, err.Error())
	}
	return Parsed(StageExtract, fields)
}

// parseObject strictly decodes s and requires a JSON object at the top level.
func parseObject(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errEmpty
	}

	var value any
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return fields, nil
}

package recovery

import (
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Repair fixes the corruption left by an LLM response cut off at its token
// limit. Starting at the first '{' of raw, it scans line by line:
//
//   - a line that ends inside an open string gets a closing quote and a comma;
//   - a line that ends with a complete value and no comma gets a comma;
//   - a line that ends with a key and ':' gets "null,";
//   - lines ending in '{', '}', '[', ']' or ',' are left as they are.
//
// Every '{' and '[' still open afterwards is closed, the text is normalized
// (dangling commas removed) and parsed strictly. Repair is best effort: it may
// produce valid JSON whose last field is cut short.
func Repair(raw string) Result {
	start := strings.Index(raw, "{")
	if start == -1 {
		return Unparseable(StageRepair, "no object opener")
	}

	lines := strings.Split(raw[start:], "\n")
	fixed := make([]string, 0, len(lines))
	for _, line := range lines {
		fixed = append(fixed, repairLine(line))
	}

	text := closeContainers(strings.Join(fixed, "\n"))

	fields, err := parseObject(Normalize(text))
	if err != nil {
		return Unparseable(StageRepair, err.Error())
	}
	return Parsed(StageRepair, fields)
}

// repairLine applies the per-line truncation heuristics.
func repairLine(line string) string {
	trimmed := strings.TrimRight(line, " \t\r")
	content := strings.TrimSpace(trimmed)
	if content == "" {
		return trimmed
	}
	// Code fences around a truncated object carry no data.
	if strings.HasPrefix(content, "```") {
		return ""
	}

	if endsInsideString(content) {
		// A dangling escape would swallow the closing quote.
		if strings.HasSuffix(trimmed, `\`) && !strings.HasSuffix(trimmed, `\\`) {
			trimmed = strings.TrimSuffix(trimmed, `\`)
		}
		return trimmed + `",`
	}

	switch content[len(content)-1] {
	case '{', '}', '[', ']', ',':
		return trimmed
	case ':':
		return trimmed + " null,"
	default:
		return trimmed + ","
	}
}

// endsInsideString reports whether line leaves a string literal open,
// counting unescaped double quotes from the start of the line.
func endsInsideString(line string) bool {
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		}
	}
	return inString
}

// closeContainers appends the closers for every '{' and '[' left open
// outside string literals, closing an unterminated string first.
func closeContainers(text string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if n := len(stack); n > 0 && stack[n-1] == opener(c) {
				stack = stack[:n-1]
			}
		}
	}

	if len(stack) == 0 && !inString {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(closer(stack[i]))
	}
	return b.String()
}

func opener(closer byte) byte {
	if closer == ']' {
		return '['
	}
	return '{'
}

func closer(opener byte) byte {
	if opener == '[' {
		return ']'
	}
	return '}'
}

// FindObject searches raw for the first balanced '{...}' span that parses as
// a JSON object. It covers text where the outer-brace slice of [Extract]
// paired the wrong braces, e.g. prose quoting an example object.
func FindObject(raw string) Result {
	for start := strings.IndexByte(raw, '{'); start != -1; {
		if end := matchingBrace(raw, start); end != -1 {
			if fields, err := parseObject(Normalize(raw[start : end+1])); err == nil {
				return Parsed(StageObjectSpan, fields)
			}
		}

		next := strings.IndexByte(raw[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return Unparseable(StageObjectSpan, "no balanced object parses")
}

// matchingBrace returns the index of the '}' closing the '{' at start, or -1.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
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
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// LibraryRepair hands the text from the first '{' to jsonrepair, which knows
// about single quotes, unquoted keys, comments and Python literals, and parses
// the result as an object. Text without any '{' is left to the scavenger.
func LibraryRepair(raw string) Result {
	start := strings.Index(raw, "{")
	if start == -1 {
		return Unparseable(StageLibraryRepair, "no object opener")
	}

	repaired, err := jsonrepair.JSONRepair(raw[start:])
	if err != nil {
		return Unparseable(StageLibraryRepair, fmt.Sprintf("jsonrepair: %v", err))
	}

	fields, err := parseObject(repaired)
	if err != nil {
		return Unparseable(StageLibraryRepair, err.Error())
	}
	return Parsed(StageLibraryRepair, fields)
}

package recovery

import (
	"regexp"
	"strconv"
	"strings"
)

// Hint tells the scavenger what kind of value to look for after a key.
type Hint int

const (
	HintString Hint = iota
	HintNumber
	HintBool
	HintStringList
)

// Field is a key the scavenger searches for, with its expected value kind.
type Field struct {
	Name string
	Hint Hint

	// Parent is the dotted path of the object the field belongs to. The
	// scavenged value is stored under it, e.g. Parent "marketAnalysis" and
	// Name "size" yield {"marketAnalysis": {"size": ...}}. The key is still
	// searched by Name alone, so two fields sharing a name under different
	// parents both take the first occurrence.
	Parent string
}

// StringFields is shorthand for a list of string-hinted fields.
func StringFields(names ...string) []Field {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name}
	}
	return fields
}

var listItem = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

type scavengeRule struct {
	field   Field
	pattern *regexp.Regexp
}

// Scavenger holds the compiled patterns for a fixed field list. It is safe
// for concurrent use.
type Scavenger struct {
	rules []scavengeRule
}

// NewScavenger compiles the patterns of fields. Fields without a name are
// dropped.
func NewScavenger(fields []Field) *Scavenger {
	s := &Scavenger{rules: make([]scavengeRule, 0, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		s.rules = append(s.rules, scavengeRule{field: f, pattern: compileRule(f)})
	}
	return s
}

func compileRule(f Field) *regexp.Regexp {
	key := `"` + regexp.QuoteMeta(f.Name) + `"\s*:\s*`
	switch f.Hint {
	case HintNumber:
		return regexp.MustCompile(key + `(-?\d+(?:\.\d+)?)`)
	case HintBool:
		return regexp.MustCompile(key + `(true|false)`)
	case HintStringList:
		return regexp.MustCompile(key + `\[([^\]]*)`)
	default:
		return regexp.MustCompile(key + `"([^"]*)`)
	}
}

// Fields returns the fields the scavenger looks for.
func (s *Scavenger) Fields() []Field {
	fields := make([]Field, len(s.rules))
	for i, r := range s.rules {
		fields[i] = r.field
	}
	return fields
}

// Scavenge looks for `"name": "value"` (or a number, boolean or list of
// strings, depending on the hint) for each field and keeps the first match.
// String values are taken up to the next double quote, so a truncated
// trailing value is still recovered; a truncated list keeps its complete
// items. Scavenge never fails: with no matches it returns an empty mapping.
func (s *Scavenger) Scavenge(raw string) Result {
	found := make(map[string]any, len(s.rules))
	for _, r := range s.rules {
		m := r.pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		value, ok := convert(r.field.Hint, m[1])
		if !ok {
			continue
		}
		if obj := parentOf(found, r.field.Parent); obj != nil {
			if _, seen := obj[r.field.Name]; !seen {
				obj[r.field.Name] = value
			}
		}
	}
	return Parsed(StageScavenge, found)
}

// Scavenge runs a one-off [Scavenger] over raw.
func Scavenge(raw string, fields []Field) Result {
	return NewScavenger(fields).Scavenge(raw)
}

func convert(hint Hint, match string) (any, bool) {
	switch hint {
	case HintNumber:
		n, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case HintBool:
		return match == "true", true
	case HintStringList:
		items := listItem.FindAllStringSubmatch(match, -1)
		list := make([]string, 0, len(items))
		for _, item := range items {
			list = append(list, item[1])
		}
		return list, true
	default:
		return match, true
	}
}

// parentOf returns the map at the dotted path, creating it as needed, or nil
// when a non-object value is in the way.
func parentOf(root map[string]any, path string) map[string]any {
	if path == "" {
		return root
	}
	current := root
	for _, part := range strings.Split(path, ".") {
		next, ok := current[part]
		if !ok {
			child := map[string]any{}
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

package record

import (
	"fmt"
	"math"

	"github.com/leofalp/pitchlens/core/recovery"
)

// Kind is the declared type of a schema field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindStringList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStringList:
		return "string_list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Range bounds a numeric field.
type Range struct {
	Min float64
	Max float64
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// FieldSpec declares one field of a schema.
type FieldSpec struct {
	Name string
	Kind Kind

	// Default is used when the field is missing, mistyped or disabled.
	// Object fields ignore it and default each sub-field instead.
	Default any

	// Range clamps numeric values, extracted or default.
	Range *Range

	// Fields lists the sub-fields of an object field.
	Fields []FieldSpec

	// Enabled gates the field on the request context. A disabled field
	// always takes its default.
	Enabled func(Context) bool
}

func (f FieldSpec) enabled(ctx Context) bool {
	return f.Enabled == nil || f.Enabled(ctx)
}

// Schema is the fixed field set of a record.
type Schema struct {
	Name string

	// SubjectPrefix builds the fallback subject ID "<prefix>_<unix seconds>".
	SubjectPrefix string

	// SubjectKey is the JSON key the subject ID is serialized under.
	SubjectKey string

	Fields []FieldSpec
}

// Field returns the top-level field called name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Names lists the top-level field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// WithDefaults returns a copy of s whose defaults are replaced by the entries
// of overrides, keyed by top-level field name. An object field takes a
// map[string]any whose entries override its sub-fields the same way, so
// {"marketAnalysis": {"size": "Unknown"}} changes one sub-field and keeps the
// others. Unknown names and non-map overrides of object fields are ignored.
func (s Schema) WithDefaults(overrides map[string]any) Schema {
	s.Fields = withDefaults(s.Fields, overrides)
	return s
}

func withDefaults(specs []FieldSpec, overrides map[string]any) []FieldSpec {
	fields := make([]FieldSpec, len(specs))
	copy(fields, specs)
	for i := range fields {
		v, ok := overrides[fields[i].Name]
		if !ok {
			continue
		}
		if fields[i].Kind == KindObject {
			if sub, ok := v.(map[string]any); ok {
				fields[i].Fields = withDefaults(fields[i].Fields, sub)
			}
			continue
		}
		fields[i].Default = v
	}
	return fields
}

// Defaults returns a fresh mapping holding the default of every field.
func (s Schema) Defaults() map[string]any {
	return defaultsOf(s.Fields)
}

// ScavengeFields lists every non-object field, nested ones included, with
// the hint matching its kind. Nested fields carry the dotted path of their
// object as Parent.
func (s Schema) ScavengeFields() []recovery.Field {
	return scavengeFields(s.Fields, "", nil)
}

func scavengeFields(specs []FieldSpec, parent string, out []recovery.Field) []recovery.Field {
	for _, f := range specs {
		field := recovery.Field{Name: f.Name, Parent: parent}
		switch f.Kind {
		case KindString:
			field.Hint = recovery.HintString
		case KindNumber:
			field.Hint = recovery.HintNumber
		case KindBool:
			field.Hint = recovery.HintBool
		case KindStringList:
			field.Hint = recovery.HintStringList
		case KindObject:
			path := f.Name
			if parent != "" {
				path = parent + "." + f.Name
			}
			out = scavengeFields(f.Fields, path, out)
			continue
		default:
			continue
		}
		out = append(out, field)
	}
	return out
}

func defaultsOf(specs []FieldSpec) map[string]any {
	out := make(map[string]any, len(specs))
	for _, f := range specs {
		out[f.Name] = defaultValue(f)
	}
	return out
}

func defaultValue(f FieldSpec) any {
	switch f.Kind {
	case KindObject:
		return defaultsOf(f.Fields)
	case KindStringList:
		list, ok := asStringList(f.Default)
		if !ok {
			return []string{}
		}
		return list
	case KindNumber:
		n, _ := asNumber(f.Default)
		if f.Range != nil {
			n = f.Range.Clamp(n)
		}
		return n
	case KindBool:
		b, _ := asBool(f.Default)
		return b
	default:
		str, _ := asString(f.Default)
		return str
	}
}

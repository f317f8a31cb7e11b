package record

import (
	"encoding/json"
	"maps"
	"strings"
	"time"
)

// Context carries the request data assembly depends on.
type Context struct {
	// SubjectID identifies what the record is about, e.g. a pitch ID.
	SubjectID string

	// Labels feed the Enabled gates of the schema fields.
	Labels map[string]string
}

// Label returns the label called key, or "".
func (c Context) Label(key string) string {
	return c.Labels[key]
}

// Field is a single value together with its provenance.
type Field struct {
	Value  any
	Source Source
}

// Record is a fully populated, immutable result. Accessors return copies.
type Record struct {
	ID        string
	SubjectID string
	CreatedAt time.Time

	schema     string
	subjectKey string
	values     map[string]any
	provenance map[string]Source
}

// SchemaName returns the name of the schema the record was assembled for.
func (r *Record) SchemaName() string {
	return r.schema
}

// Value returns a copy of the value at a dotted path such as
// "categoryScores.innovation".
func (r *Record) Value(path string) (any, bool) {
	v, ok := lookup(r.values, path)
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Field returns the value at path with its provenance.
func (r *Record) Field(path string) (Field, bool) {
	v, ok := r.Value(path)
	if !ok {
		return Field{}, false
	}
	return Field{Value: v, Source: r.provenance[path]}, true
}

// String returns the string at path, or "".
func (r *Record) String(path string) string {
	v, _ := lookup(r.values, path)
	s, _ := v.(string)
	return s
}

// Number returns the number at path, or 0.
func (r *Record) Number(path string) float64 {
	v, _ := lookup(r.values, path)
	n, _ := v.(float64)
	return n
}

// Bool returns the boolean at path, or false.
func (r *Record) Bool(path string) bool {
	v, _ := lookup(r.values, path)
	b, _ := v.(bool)
	return b
}

// Strings returns a copy of the string list at path, or nil.
func (r *Record) Strings(path string) []string {
	v, _ := lookup(r.values, path)
	list, ok := v.([]string)
	if !ok {
		return nil
	}
	return append([]string{}, list...)
}

// Source returns the provenance of the value at path, or "" for an unknown
// path.
func (r *Record) Source(path string) Source {
	return r.provenance[path]
}

// Provenance returns the source of every field keyed by dotted path.
func (r *Record) Provenance() map[string]Source {
	return maps.Clone(r.provenance)
}

// Values returns a deep copy of all field values.
func (r *Record) Values() map[string]any {
	return deepCopy(r.values).(map[string]any)
}

// MarshalJSON writes the field values flat, next to the metadata keys "id",
// the schema subject key and "createdAt", plus a "provenance" object.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := r.Values()
	out["id"] = r.ID
	out[r.subjectJSONKey()] = r.SubjectID
	out["createdAt"] = r.CreatedAt.UTC().Format(time.RFC3339)
	out["provenance"] = r.Provenance()
	return json.Marshal(out)
}

func (r *Record) subjectJSONKey() string {
	if r.subjectKey == "" {
		return "subjectId"
	}
	return r.subjectKey
}

func lookup(values map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

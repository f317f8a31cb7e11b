package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Assembler builds records. The zero value is usable and uses time.Now and
// random UUIDs.
type Assembler struct {
	now   func() time.Time
	newID func() string
}

// AssemblerOption configures an [Assembler].
type AssemblerOption func(*Assembler)

// WithClock sets the source of creation timestamps.
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithIDSource sets the generator of record IDs.
func WithIDSource(newID func() string) AssemblerOption {
	return func(a *Assembler) {
		a.newID = newID
	}
}

// NewAssembler creates an assembler.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds a record holding every field of schema. A field takes the
// extracted value, tagged with source, when it is present, enabled for ctx
// and of the declared kind; numeric strings and "true"/"false" are accepted
// for numbers and booleans. Otherwise the field takes a copy of its default,
// tagged [SourceDefault]. Object fields are assembled sub-field by
// sub-field. Numbers are clamped to their Range.
//
// The subject ID is ctx.SubjectID, else a string under the schema subject key
// in extracted, else "<prefix>_<unix seconds>".
func (a *Assembler) Assemble(schema Schema, extracted map[string]any, source Source, ctx Context) *Record {
	now := a.clock()

	rec := &Record{
		ID:         a.id(),
		CreatedAt:  now,
		schema:     schema.Name,
		subjectKey: schema.SubjectKey,
		values:     make(map[string]any, len(schema.Fields)),
		provenance: make(map[string]Source, len(schema.Fields)),
	}
	assembleFields(schema.Fields, extracted, source, ctx, "", rec.values, rec.provenance)
	rec.SubjectID = subjectID(schema, extracted, ctx, now)

	return rec
}

// Default builds a record made only of defaults.
func (a *Assembler) Default(schema Schema, ctx Context) *Record {
	return a.Assemble(schema, nil, SourceDefault, ctx)
}

func (a *Assembler) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

func (a *Assembler) id() string {
	if a.newID == nil {
		return uuid.NewString()
	}
	return a.newID()
}

func assembleFields(specs []FieldSpec, extracted map[string]any, source Source, ctx Context, prefix string, values map[string]any, provenance map[string]Source) {
	for _, f := range specs {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		raw, present := extracted[f.Name]
		if !f.enabled(ctx) {
			present = false
		}

		if f.Kind == KindObject {
			sub, ok := raw.(map[string]any)
			if !present || !ok {
				sub = nil
			}
			obj := make(map[string]any, len(f.Fields))
			assembleFields(f.Fields, sub, source, ctx, path, obj, provenance)
			values[f.Name] = obj
			if sub != nil {
				provenance[path] = source
			} else {
				provenance[path] = SourceDefault
			}
			continue
		}

		if present {
			if v, ok := coerce(f, raw); ok {
				values[f.Name] = v
				provenance[path] = source
				continue
			}
		}
		values[f.Name] = defaultValue(f)
		provenance[path] = SourceDefault
	}
}

func coerce(f FieldSpec, raw any) (any, bool) {
	switch f.Kind {
	case KindString:
		return asString(raw)
	case KindNumber:
		n, ok := asNumber(raw)
		if !ok {
			return nil, false
		}
		if f.Range != nil {
			n = f.Range.Clamp(n)
		}
		return n, true
	case KindBool:
		return asBool(raw)
	case KindStringList:
		return asStringList(raw)
	default:
		return nil, false
	}
}

func subjectID(schema Schema, extracted map[string]any, ctx Context, now time.Time) string {
	if ctx.SubjectID != "" {
		return ctx.SubjectID
	}
	if schema.SubjectKey != "" {
		if s, ok := extracted[schema.SubjectKey].(string); ok && s != "" {
			return s
		}
	}

	prefix := schema.SubjectPrefix
	if prefix == "" {
		prefix = schema.Name
	}
	if prefix == "" {
		prefix = "record"
	}
	return fmt.Sprintf("%s_%d", prefix, now.Unix())
}

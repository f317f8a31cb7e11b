package recovery

import "maps"

// Stage names a step of the recovery chain.
type Stage string

const (
	StageExtract       Stage = "extract"
	StageRepair        Stage = "repair"
	StageObjectSpan    Stage = "object_span"
	StageLibraryRepair Stage = "library_repair"
	StageScavenge      Stage = "scavenge"
)

// Result is the tagged outcome of a stage: Parsed with Fields, or
// Unparseable with a Reason.
type Result struct {
	Stage  Stage
	Fields map[string]any
	Reason string
}

// Parsed builds a successful result.
func Parsed(stage Stage, fields map[string]any) Result {
	if fields == nil {
		fields = map[string]any{}
	}
	return Result{Stage: stage, Fields: fields}
}

// Unparseable builds a failed result.
func Unparseable(stage Stage, reason string) Result {
	return Result{Stage: stage, Reason: reason}
}

// Parsed reports whether the stage produced a mapping.
func (r Result) Parsed() bool {
	return r.Fields != nil
}

// Empty reports whether no field at all was recovered.
func (r Result) Empty() bool {
	return len(r.Fields) == 0
}

// Clone returns a copy whose top-level map can be modified freely.
func (r Result) Clone() Result {
	if r.Fields != nil {
		r.Fields = maps.Clone(r.Fields)
	}
	return r
}

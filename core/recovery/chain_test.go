package recovery

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stageRecorder struct {
	mu     sync.Mutex
	stages []Stage
	parsed []bool
}

func (r *stageRecorder) hook(_ context.Context, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, res.Stage)
	r.parsed = append(r.parsed, res.Parsed())
}

func TestChain_Run(t *testing.T) {
	fields := StringFields("problem", "solution")

	tests := []struct {
		name       string
		input      string
		wantStage  Stage
		wantFields map[string]any
		wantTrail  []Stage
	}{
		{
			name:       "valid json",
			input:      `{"problem": "X", "solution": "Y"}`,
			wantStage:  StageExtract,
			wantFields: map[string]any{"problem": "X", "solution": "Y"},
			wantTrail:  []Stage{StageExtract},
		},
		{
			name:       "truncated object",
			input:      "Here is the result:\n{\"problem\": \"X\", \"solution\": \"Y\"",
			wantStage:  StageRepair,
			wantFields: map[string]any{"problem": "X", "solution": "Y"},
			wantTrail:  []Stage{StageExtract, StageRepair},
		},
		{
			name:       "example object before the answer",
			input:      `Format: {problem} Answer: {"problem": "X", "solution": "Y"} trailing }`,
			wantStage:  StageObjectSpan,
			wantFields: map[string]any{"problem": "X", "solution": "Y"},
			wantTrail:  []Stage{StageExtract, StageRepair, StageObjectSpan},
		},
		{
			name:       "single quoted object",
			input:      `{'problem': 'X', 'solution': 'Y'}`,
			wantStage:  StageLibraryRepair,
			wantFields: map[string]any{"problem": "X", "solution": "Y"},
			wantTrail:  []Stage{StageExtract, StageRepair, StageObjectSpan, StageLibraryRepair},
		},
		{
			name:       "no braces at all",
			input:      `The pitch: "problem": "X" and then "solution": "Y`,
			wantStage:  StageScavenge,
			wantFields: map[string]any{"problem": "X", "solution": "Y"},
			wantTrail:  []Stage{StageExtract, StageRepair, StageObjectSpan, StageLibraryRepair, StageScavenge},
		},
		{
			name:       "nothing recoverable",
			input:      "I cannot help with that.",
			wantStage:  StageScavenge,
			wantFields: map[string]any{},
			wantTrail:  []Stage{StageExtract, StageRepair, StageObjectSpan, StageLibraryRepair, StageScavenge},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &stageRecorder{}
			chain := NewChain(fields, WithHook(rec.hook))

			got := chain.Run(context.Background(), tt.input)
			if !got.Parsed() {
				t.Fatal("Run() must always return a parsed result")
			}
			if got.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", got.Stage, tt.wantStage)
			}
			if diff := cmp.Diff(tt.wantFields, got.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantTrail, rec.stages); diff != "" {
				t.Errorf("hook trail mismatch (-want +got):\n%s", diff)
			}
			for i, parsed := range rec.parsed {
				if last := i == len(rec.parsed)-1; parsed != last {
					t.Errorf("hook %d (%s): parsed = %v", i, rec.stages[i], parsed)
				}
			}
		})
	}
}

func TestChain_HookOrder(t *testing.T) {
	var calls []string
	chain := NewChain(nil,
		WithHook(func(context.Context, Result) { calls = append(calls, "first") }),
		WithHook(nil),
		WithHook(func(context.Context, Result) { calls = append(calls, "second") }),
	)

	chain.Run(context.Background(), `{"a": 1}`)

	want := []string{"first", "second"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
}

func TestChain_WithoutLibraryRepair(t *testing.T) {
	rec := &stageRecorder{}
	chain := NewChain(StringFields("problem"), WithHook(rec.hook), WithoutLibraryRepair())

	got := chain.Run(context.Background(), `{'problem': 'X'}`)
	if got.Stage != StageScavenge {
		t.Errorf("Stage = %q, want %q", got.Stage, StageScavenge)
	}
	for _, s := range rec.stages {
		if s == StageLibraryRepair {
			t.Error("library repair ran although disabled")
		}
	}
}

func TestChain_FieldsCopied(t *testing.T) {
	fields := StringFields("a")
	chain := NewChain(fields)
	fields[0].Name = "mutated"

	if got := chain.Fields()[0].Name; got != "a" {
		t.Errorf("Fields()[0].Name = %q, want a", got)
	}
}

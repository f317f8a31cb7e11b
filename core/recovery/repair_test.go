package recovery

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "missing closing brace after prose",
			input: "Here is the result:\n{\"problem\": \"X\", \"solution\": \"Y\"",
			want:  map[string]any{"problem": "X", "solution": "Y"},
		},
		{
			name:  "cut inside a string",
			input: `{"problem": "X", "solution": "Half a sente`,
			want:  map[string]any{"problem": "X", "solution": "Half a sente"},
		},
		{
			name:  "cut after a key",
			input: "{\n  \"a\": \"x\",\n  \"b\":",
			want:  map[string]any{"a": "x", "b": nil},
		},
		{
			name:  "cut after a comma",
			input: "{\n  \"a\": 1,",
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "cut on a dangling escape",
			input: `{"path": "C:\`,
			want:  map[string]any{"path": "C:"},
		},
		{
			name: "pretty printed and nested",
			input: "```json\n{\n  \"overallScore\": 88,\n  \"feedback\": {\n    \"strengths\": [\n" +
				"      \"Clear value\",\n      \"Strong te",
			want: map[string]any{
				"overallScore": float64(88),
				"feedback": map[string]any{
					"strengths": []any{"Clear value", "Strong te"},
				},
			},
		},
		{
			name:  "missing commas between lines",
			input: "{\n  \"a\": \"x\"\n  \"b\": true\n  \"c\": 3\n}",
			want:  map[string]any{"a": "x", "b": true, "c": float64(3)},
		},
		{
			name:  "already valid",
			input: `{"a": {"b": "c"}}`,
			want:  map[string]any{"a": map[string]any{"b": "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.input)
			if !got.Parsed() {
				t.Fatalf("Repair() unparseable: %s", got.Reason)
			}
			if got.Stage != StageRepair {
				t.Errorf("Stage = %q, want %q", got.Stage, StageRepair)
			}
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("Repair() fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepair_MissingClosingBraces(t *testing.T) {
	full := `{"l0": {"l1": {"l2": {"l3": "leaf"}}}}`
	for k := 0; k <= 4; k++ {
		input := strings.TrimSuffix(full, strings.Repeat("}", k))
		got := Repair(input)
		if !got.Parsed() {
			t.Fatalf("k=%d: Repair(%q) unparseable: %s", k, input, got.Reason)
		}

		node := got.Fields
		for _, key := range []string{"l0", "l1", "l2"} {
			next, ok := node[key].(map[string]any)
			if !ok {
				t.Fatalf("k=%d: %q is %T, want object", k, key, node[key])
			}
			node = next
		}
		if node["l3"] != "leaf" {
			t.Errorf("k=%d: l3 = %v, want leaf", k, node["l3"])
		}
	}
}

func TestRepair_Unparseable(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no opener", input: `"a": "x"`},
		{name: "empty", input: ""},
		{name: "mismatched bracket", input: `{"a": ]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repair(tt.input); got.Parsed() {
				t.Errorf("Repair() parsed %v, want unparseable", got.Fields)
			}
		})
	}
}

func TestFindObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "skips invalid leading span",
			input: `Use the form {field: value}. Result: {"a": 1} done }`,
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "braces inside strings",
			input: `{"a": "}{"} and a stray }`,
			want:  map[string]any{"a": "}{"},
		},
		{
			name:  "nested span inside broken outer",
			input: `{"broken": {"a": "x"}`,
			want:  map[string]any{"a": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindObject(tt.input)
			if !got.Parsed() {
				t.Fatalf("FindObject() unparseable: %s", got.Reason)
			}
			if got.Stage != StageObjectSpan {
				t.Errorf("Stage = %q, want %q", got.Stage, StageObjectSpan)
			}
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("FindObject() fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindObject_NothingBalanced(t *testing.T) {
	for _, input := range []string{"", "no braces", `{"a": "x"`, `{bad}`} {
		if got := FindObject(input); got.Parsed() {
			t.Errorf("FindObject(%q) parsed %v", input, got.Fields)
		}
	}
}

func TestLibraryRepair(t *testing.T) {
	got := LibraryRepair(`Result: {'problem': 'X', 'solution': 'Y'}`)
	if !got.Parsed() {
		t.Fatalf("LibraryRepair() unparseable: %s", got.Reason)
	}
	if got.Stage != StageLibraryRepair {
		t.Errorf("Stage = %q, want %q", got.Stage, StageLibraryRepair)
	}
	want := map[string]any{"problem": "X", "solution": "Y"}
	if diff := cmp.Diff(want, got.Fields); diff != "" {
		t.Errorf("LibraryRepair() fields mismatch (-want +got):\n%s", diff)
	}

	if got := LibraryRepair(`problem: X`); got.Parsed() {
		t.Errorf("LibraryRepair() without '{' parsed %v", got.Fields)
	}
}

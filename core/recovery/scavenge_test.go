package recovery

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScavenge(t *testing.T) {
	fields := []Field{
		{Name: "response"},
		{Name: "overallScore", Hint: HintNumber},
		{Name: "nftEligible", Hint: HintBool},
		{Name: "a.b"},
	}

	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "all kinds",
			input: `junk "overallScore": 88.5, "nftEligible": false, "response": "Nice"`,
			want:  map[string]any{"response": "Nice", "overallScore": 88.5, "nftEligible": false},
		},
		{
			name:  "truncated string value",
			input: `"response": "Great pitch but the mark`,
			want:  map[string]any{"response": "Great pitch but the mark"},
		},
		{
			name:  "first match wins",
			input: `"response": "first" ... "response": "second"`,
			want:  map[string]any{"response": "first"},
		},
		{
			name:  "negative number",
			input: `"overallScore" : -3`,
			want:  map[string]any{"overallScore": float64(-3)},
		},
		{
			name:  "field name is matched literally",
			input: `"axb": "wrong", "a.b": "right"`,
			want:  map[string]any{"a.b": "right"},
		},
		{
			name:  "nothing found",
			input: "The model refused to answer.",
			want:  map[string]any{},
		},
		{
			name:  "wrong kind is skipped",
			input: `"overallScore": "high", "nftEligible": "yes"`,
			want:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scavenge(tt.input, fields)
			if !got.Parsed() {
				t.Fatal("Scavenge() must always parse")
			}
			if got.Stage != StageScavenge {
				t.Errorf("Stage = %q, want %q", got.Stage, StageScavenge)
			}
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("Scavenge() fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScavenge_NestedAndLists(t *testing.T) {
	fields := []Field{
		{Name: "strengths", Hint: HintStringList},
		{Name: "trends", Hint: HintStringList, Parent: "marketAnalysis"},
		{Name: "size", Parent: "marketAnalysis"},
		{Name: "innovation", Hint: HintNumber, Parent: "categoryScores"},
		{Name: "presentation", Hint: HintNumber, Parent: "categoryScores"},
		{Name: "deep", Parent: "a.b"},
	}

	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name: "brace-less nested leaves",
			input: `Scores: "innovation": 91, "presentation": "n/a"
market: "size": "$4B", "trends": ["EV adoption", "Remote work"]`,
			want: map[string]any{
				"categoryScores": map[string]any{"innovation": float64(91)},
				"marketAnalysis": map[string]any{"size": "$4B", "trends": []string{"EV adoption", "Remote work"}},
			},
		},
		{
			name:  "truncated list keeps complete items",
			input: `"strengths": ["Clear problem", "Strong te`,
			want:  map[string]any{"strengths": []string{"Clear problem"}},
		},
		{
			name:  "empty list",
			input: `"strengths": []`,
			want:  map[string]any{"strengths": []string{}},
		},
		{
			name:  "escaped quote in item",
			input: `"strengths": ["The \"why\" is clear"]`,
			want:  map[string]any{"strengths": []string{`The \"why\" is clear`}},
		},
		{
			name:  "multi-level parent",
			input: `"deep": "value"`,
			want:  map[string]any{"a": map[string]any{"b": map[string]any{"deep": "value"}}},
		},
		{
			name:  "no parent created without a match",
			input: `"strengths": "not a list"`,
			want:  map[string]any{},
		},
	}

	s := NewScavenger(fields)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Scavenge(tt.input)
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("Scavenge() fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewScavenger(t *testing.T) {
	fields := []Field{{Name: "a"}, {Name: ""}, {Name: "b", Hint: HintBool, Parent: "p"}}
	s := NewScavenger(fields)
	fields[0].Name = "mutated"

	want := []Field{{Name: "a"}, {Name: "b", Hint: HintBool, Parent: "p"}}
	if diff := cmp.Diff(want, s.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestStringFields(t *testing.T) {
	got := StringFields("problem", "solution")
	want := []Field{{Name: "problem"}, {Name: "solution"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("StringFields() mismatch (-want +got):\n%s", diff)
	}
}

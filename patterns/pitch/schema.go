package pitch

import (
	"fmt"

	"github.com/leofalp/pitchlens/core/record"
)

// LabelKind is the record context label carrying the ContentKind.
const LabelKind = "kind"

// DefaultResponse is the analysis response used when the model gave none.
const DefaultResponse = "This pitch demonstrates strong potential with clear value proposition. " +
	"Consider emphasizing the competitive advantages and market timing more prominently. " +
	"The business model appears solid but could benefit from more detailed financial projections and customer acquisition strategy."

var scoreRange = &record.Range{Min: 70, Max: 100}

func score(name string, def float64) record.FieldSpec {
	return record.FieldSpec{Name: name, Kind: record.KindNumber, Default: def, Range: scoreRange}
}

func spoken(ctx record.Context) bool {
	return ContentKind(ctx.Label(LabelKind)).Spoken()
}

// AnalysisSchema is the record layout of a pitch analysis. Scores are
// clamped to 70-100 and keynotes are only kept for audio and video pitches.
func AnalysisSchema() record.Schema {
	return record.Schema{
		Name:          "pitch_analysis",
		SubjectPrefix: "pitch",
		SubjectKey:    "pitchId",
		Fields: []record.FieldSpec{
			score("overallScore", 85),
			{
				Name: "categoryScores",
				Kind: record.KindObject,
				Fields: []record.FieldSpec{
					score("marketOpportunity", 85),
					score("businessModel", 80),
					score("presentation", 85),
					score("financialViability", 80),
					score("innovation", 85),
				},
			},
			{
				Name: "feedback",
				Kind: record.KindObject,
				Fields: []record.FieldSpec{
					{Name: "strengths", Kind: record.KindStringList, Default: []string{"Good overall pitch structure"}},
					{Name: "improvements", Kind: record.KindStringList, Default: []string{"Could use more specific data"}},
					{Name: "recommendations", Kind: record.KindStringList, Default: []string{"Add more market research"}},
				},
			},
			{Name: "response", Kind: record.KindString, Default: DefaultResponse},
			{Name: "keynotes", Kind: record.KindStringList, Default: []string{}, Enabled: spoken},
			{
				Name: "marketAnalysis",
				Kind: record.KindObject,
				Fields: []record.FieldSpec{
					{Name: "size", Kind: record.KindString, Default: "TBD"},
					{Name: "growth", Kind: record.KindString, Default: "TBD"},
					{Name: "competition", Kind: record.KindString, Default: "TBD"},
					{Name: "trends", Kind: record.KindStringList, Default: []string{"Industry growth"}},
				},
			},
			{Name: "nftEligible", Kind: record.KindBool, Default: true},
		},
	}
}

// PitchSchema is the record layout of a generated pitch about topic.
func PitchSchema(topic string) record.Schema {
	return record.Schema{
		Name:          "generated_pitch",
		SubjectPrefix: "pitch",
		SubjectKey:    "pitchId",
		Fields: []record.FieldSpec{
			{Name: "problem", Kind: record.KindString, Default: fmt.Sprintf("Problem for %s", topic)},
			{Name: "solution", Kind: record.KindString, Default: fmt.Sprintf("Solution for %s", topic)},
			{Name: "market", Kind: record.KindString, Default: "Market size and opportunity"},
			{Name: "business_model", Kind: record.KindString, Default: "Business model details"},
		},
	}
}

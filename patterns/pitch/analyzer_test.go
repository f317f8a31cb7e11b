package pitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/pitchlens/core/record"
	"github.com/leofalp/pitchlens/core/recovery"
	"github.com/leofalp/pitchlens/core/retry"
	"github.com/leofalp/pitchlens/internal/utils"
	"github.com/leofalp/pitchlens/providers/ai"
	"github.com/leofalp/pitchlens/providers/speech"
)

const fullAnswer = "Here is my evaluation:\n```json\n" + `{
  "overallScore": 150,
  "categoryScores": {"marketOpportunity": 90, "businessModel": 60, "presentation": "88"},
  "feedback": {"strengths": ["Clear problem"], "improvements": ["Pricing"]},
  "response": "Solid pitch.",
  "keynotes": ["Saves 2h per day"],
  "marketAnalysis": {"size": "$4B", "competition": "Moderate"},
  "nftEligible": false
}` + "\n```"

var healthPitch = Pitch{
	ID:            "p-42",
	Title:         "AI Healthcare Assistant",
	Description:   "AI platform for diagnostics",
	Industry:      "Healthcare Technology",
	TargetMarket:  "Hospitals and Clinics",
	BusinessModel: "SaaS Subscription",
	FundingAmount: "$2M",
	Content:       "We help doctors diagnose faster.",
}

type stubTranscriber struct {
	calls atomic.Int32
	fn    func(n int, req speech.TranscribeRequest) (*speech.Transcript, error)
}

func (s *stubTranscriber) Transcribe(_ context.Context, req speech.TranscribeRequest) (*speech.Transcript, error) {
	return s.fn(int(s.calls.Add(1)), req)
}

func openString(s string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

func TestAnalyze_Text(t *testing.T) {
	var seen []ai.ChatRequest
	a := NewAnalyzer(testEngine(replying(fullAnswer, &seen)))

	got, err := a.Analyze(context.Background(), healthPitch)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	rec := got.Record
	if rec.SubjectID != "p-42" {
		t.Errorf("SubjectID = %q", rec.SubjectID)
	}
	checks := []struct {
		path string
		want any
	}{
		{"overallScore", 100.0},
		{"categoryScores.marketOpportunity", 90.0},
		{"categoryScores.businessModel", 70.0},
		{"categoryScores.presentation", 88.0},
		{"categoryScores.innovation", 85.0},
		{"feedback.strengths", []string{"Clear problem"}},
		{"feedback.recommendations", []string{"Add more market research"}},
		{"response", "Solid pitch."},
		{"keynotes", []string{}},
		{"marketAnalysis.size", "$4B"},
		{"marketAnalysis.growth", "TBD"},
		{"nftEligible", false},
	}
	for _, c := range checks {
		v, _ := rec.Value(c.path)
		if diff := cmp.Diff(c.want, v); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", c.path, diff)
		}
	}
	if src := rec.Source("keynotes"); src != record.SourceDefault {
		t.Errorf("keynotes source = %q, want default for a text pitch", src)
	}
	if got.Stage != recovery.StageExtract || got.Degraded {
		t.Errorf("Stage = %q, Degraded = %v", got.Stage, got.Degraded)
	}
	if got.VoiceAnalysis != nil {
		t.Errorf("VoiceAnalysis = %+v, want nil for text", got.VoiceAnalysis)
	}
	if got.Pitch.Kind != KindText {
		t.Errorf("Pitch.Kind = %q", got.Pitch.Kind)
	}

	if len(seen) != 1 {
		t.Fatalf("provider saw %d requests", len(seen))
	}
	req := seen[0]
	if req.Model != "mistral-small-latest" || req.GenerationConfig.Temperature != 0.7 || req.GenerationConfig.MaxTokens != 2000 {
		t.Errorf("request tuning = %s %+v", req.Model, req.GenerationConfig)
	}
	if !strings.Contains(req.Messages[0].Content, "- Title: AI Healthcare Assistant") ||
		!strings.Contains(req.Messages[0].Content, "We help doctors diagnose faster.") {
		t.Errorf("prompt misses pitch data:\n%s", req.Messages[0].Content)
	}
	if strings.Contains(req.Messages[0].Content, "spoken pitch") {
		t.Error("text prompt asks for keynotes")
	}
}

func TestAnalyze_SpokenKeepsKeynotesAndVoice(t *testing.T) {
	a := NewAnalyzer(testEngine(replying(fullAnswer, nil)), WithRand(rand.New(rand.NewPCG(1, 2))))
	p := healthPitch
	p.Kind = KindAudio

	got, err := a.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Saves 2h per day"}, got.Record.Strings("keynotes")); diff != "" {
		t.Errorf("keynotes mismatch (-want +got):\n%s", diff)
	}

	v := got.VoiceAnalysis
	if v == nil {
		t.Fatal("VoiceAnalysis = nil for audio")
	}
	if v.Clarity < 75 || v.Clarity > 95 || v.Pace < 70 || v.Pace > 90 || v.Confidence < 75 || v.Confidence > 95 {
		t.Errorf("voice scores out of range: %+v", v)
	}
	if len(v.Suggestions) != 3 {
		t.Errorf("Suggestions = %v", v.Suggestions)
	}

	again, _ := NewAnalyzer(testEngine(replying(fullAnswer, nil)), WithRand(rand.New(rand.NewPCG(1, 2)))).Analyze(context.Background(), p)
	if diff := cmp.Diff(v, again.VoiceAnalysis); diff != "" {
		t.Errorf("same seed gave different voice analysis (-first +second):\n%s", diff)
	}
}

func TestAnalyze_GarbageAnswerFallsBackToDefaults(t *testing.T) {
	a := NewAnalyzer(testEngine(replying("I cannot evaluate this pitch.", nil)))

	got, err := a.Analyze(context.Background(), Pitch{Title: "Empty"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if diff := cmp.Diff(AnalysisSchema().Defaults(), got.Record.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	for path, src := range got.Record.Provenance() {
		if src != record.SourceDefault {
			t.Errorf("Source(%s) = %q, want default", path, src)
		}
	}
	if got.Record.SubjectID != "pitch_1709294400" {
		t.Errorf("SubjectID = %q", got.Record.SubjectID)
	}
}

func TestAnalyze_BracelessNestedFields(t *testing.T) {
	reply := `I cannot format JSON, but: "innovation": 93, "size": "$12B globally", ` +
		`"trends": ["Telehealth", "Wearables"], "strengths": ["Clinical team"]`
	a := NewAnalyzer(testEngine(replying(reply, nil)))

	got, err := a.Analyze(context.Background(), healthPitch)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Stage != recovery.StageScavenge {
		t.Errorf("Stage = %q, want scavenge", got.Stage)
	}

	rec := got.Record
	if n := rec.Number("categoryScores.innovation"); n != 93 {
		t.Errorf("innovation = %v, want 93", n)
	}
	if s := rec.String("marketAnalysis.size"); s != "$12B globally" {
		t.Errorf("size = %q", s)
	}
	if diff := cmp.Diff([]string{"Telehealth", "Wearables"}, rec.Strings("marketAnalysis.trends")); diff != "" {
		t.Errorf("trends mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Clinical team"}, rec.Strings("feedback.strengths")); diff != "" {
		t.Errorf("strengths mismatch (-want +got):\n%s", diff)
	}
	if src := rec.Source("marketAnalysis.growth"); src != record.SourceDefault {
		t.Errorf("Source(marketAnalysis.growth) = %q, want default", src)
	}
}

func TestAnalyze_Degraded(t *testing.T) {
	a := NewAnalyzer(testEngine(failing(&utils.StatusError{StatusCode: 429})))

	got, err := a.Analyze(context.Background(), healthPitch)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !got.Degraded {
		t.Error("Degraded = false")
	}
	if r := got.Record.String("response"); r != DegradedResponse {
		t.Errorf("response = %q", r)
	}
	if s := got.Record.Number("overallScore"); s != 85 {
		t.Errorf("overallScore = %v", s)
	}
	if src := got.Record.Source("response"); src != record.SourceDefault {
		t.Errorf("Source(response) = %q, want default for the unavailable notice", src)
	}
}

func TestAnalyze_Fatal(t *testing.T) {
	a := NewAnalyzer(testEngine(failing(&utils.StatusError{StatusCode: 401})))

	_, err := a.Analyze(context.Background(), healthPitch)
	if !errors.Is(err, retry.ErrFatal) {
		t.Errorf("error = %v, want ErrFatal", err)
	}
}

func TestAnalyzeMedia(t *testing.T) {
	var seen []ai.ChatRequest
	tr := &stubTranscriber{fn: func(n int, req speech.TranscribeRequest) (*speech.Transcript, error) {
		data, _ := io.ReadAll(req.Audio)
		if string(data) != "RIFF" {
			t.Errorf("attempt %d read %q", n, data)
		}
		if req.LanguageCode != "eng" || !req.Diarize || req.FileName != "demo.wav" {
			t.Errorf("request = %+v", req)
		}
		if n == 1 {
			return nil, &utils.StatusError{StatusCode: 429}
		}
		return &speech.Transcript{Text: "We sell solar chargers."}, nil
	}}
	a := NewAnalyzer(testEngine(replying(fullAnswer, &seen)),
		WithTranscriber(tr),
		WithTranscriptionPolicy(testPolicy()),
	)

	got, err := a.AnalyzeMedia(context.Background(), Pitch{Title: "Solar"}, Media{FileName: "demo.wav", Open: openString("RIFF")})
	if err != nil {
		t.Fatalf("AnalyzeMedia() error = %v", err)
	}
	if tr.calls.Load() != 2 {
		t.Errorf("transcriber calls = %d, want 2", tr.calls.Load())
	}
	if got.Transcription != "We sell solar chargers." || got.Pitch.Content != got.Transcription {
		t.Errorf("Transcription = %q, Content = %q", got.Transcription, got.Pitch.Content)
	}
	if got.Pitch.Kind != KindAudio || got.VoiceAnalysis == nil {
		t.Errorf("Kind = %q, VoiceAnalysis = %v", got.Pitch.Kind, got.VoiceAnalysis)
	}
	if !strings.Contains(seen[0].Messages[0].Content, "spoken pitch") {
		t.Error("spoken prompt does not ask for keynotes")
	}
}

func TestAnalyzeMedia_DegradedTranscription(t *testing.T) {
	var seen []ai.ChatRequest
	tr := &stubTranscriber{fn: func(int, speech.TranscribeRequest) (*speech.Transcript, error) {
		return nil, &utils.StatusError{StatusCode: 429}
	}}
	a := NewAnalyzer(testEngine(replying(`{"response": "ok"}`, &seen)),
		WithTranscriber(tr),
		WithTranscriptionPolicy(testPolicy()),
	)

	got, err := a.AnalyzeMedia(context.Background(), Pitch{}, Media{FileName: "talk.mp4", Open: openString("x")})
	if err != nil {
		t.Fatalf("AnalyzeMedia() error = %v", err)
	}
	if !got.Degraded || got.Transcription != DegradedTranscript {
		t.Errorf("Degraded = %v, Transcription = %q", got.Degraded, got.Transcription)
	}
	if tr.calls.Load() != 4 {
		t.Errorf("transcriber calls = %d, want 4", tr.calls.Load())
	}
	if !strings.Contains(seen[0].Messages[0].Content, DegradedTranscript) {
		t.Error("placeholder transcript not sent for analysis")
	}
}

func TestAnalyzeMedia_Errors(t *testing.T) {
	a := NewAnalyzer(testEngine(replying("{}", nil)))

	if _, err := a.AnalyzeMedia(context.Background(), Pitch{}, Media{FileName: "deck.pdf"}); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("error = %v, want ErrUnsupportedMedia", err)
	}
	if _, err := a.AnalyzeMedia(context.Background(), Pitch{}, Media{FileName: "a.mp3", Open: openString("")}); !errors.Is(err, ErrNoTranscriber) {
		t.Errorf("error = %v, want ErrNoTranscriber", err)
	}

	withTr := NewAnalyzer(testEngine(replying("{}", nil)), WithTranscriber(&stubTranscriber{
		fn: func(int, speech.TranscribeRequest) (*speech.Transcript, error) { return nil, speech.ErrNoSpeech },
	}))
	_, err := withTr.AnalyzeMedia(context.Background(), Pitch{}, Media{FileName: "a.mp3", Open: openString("")})
	if !errors.Is(err, speech.ErrNoSpeech) || !errors.Is(err, retry.ErrFatal) {
		t.Errorf("error = %v, want fatal ErrNoSpeech", err)
	}
}

func TestAnalyzeAll(t *testing.T) {
	provider := ai.ProviderFunc(func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		if strings.Contains(req.Messages[0].Content, "- Title: broken") {
			return nil, &utils.StatusError{StatusCode: 400, Body: "bad request"}
		}
		return &ai.ChatResponse{Content: `{"overallScore": 91}`}, nil
	})
	a := NewAnalyzer(testEngine(provider))

	var pitches []Pitch
	for i := 0; i < 6; i++ {
		title := fmt.Sprintf("pitch-%d", i)
		if i == 2 {
			title = "broken"
		}
		pitches = append(pitches, Pitch{ID: title, Title: title})
	}

	results := a.AnalyzeAll(context.Background(), pitches, 3)
	if len(results) != len(pitches) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
		if i == 2 {
			if !errors.Is(r.Err, retry.ErrFatal) || r.Analysis != nil {
				t.Errorf("results[2] = %+v, want fatal error", r)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
			continue
		}
		if r.Analysis.Record.SubjectID != pitches[i].ID || r.Analysis.Record.Number("overallScore") != 91 {
			t.Errorf("results[%d] = %s %v", i, r.Analysis.Record.SubjectID, r.Analysis.Record.Number("overallScore"))
		}
	}

	data, err := json.Marshal(results[2])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"error":`) {
		t.Errorf("batch result JSON lacks error: %s", data)
	}
}

type batchKey struct{}

func TestAnalyzeAll_CallerContext(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []context.Context
	)
	provider := ai.ProviderFunc(func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		mu.Lock()
		seen = append(seen, ctx)
		mu.Unlock()
		if strings.Contains(req.Messages[0].Content, "- Title: broken") {
			return nil, &utils.StatusError{StatusCode: 401}
		}
		return &ai.ChatResponse{Content: `{"overallScore": 90}`}, nil
	})
	a := NewAnalyzer(testEngine(provider))

	ctx := context.WithValue(context.Background(), batchKey{}, "run-7")
	results := a.AnalyzeAll(ctx, []Pitch{{Title: "broken"}, {Title: "ok-1"}, {Title: "ok-2"}}, 1)

	if results[0].Err == nil || results[1].Err != nil || results[2].Err != nil {
		t.Fatalf("errors = %v, %v, %v", results[0].Err, results[1].Err, results[2].Err)
	}
	if len(seen) != 3 {
		t.Fatalf("provider calls = %d, want 3", len(seen))
	}
	for i, c := range seen {
		if c.Value(batchKey{}) != "run-7" {
			t.Errorf("call %d lost the caller context values", i)
		}
		if c.Err() != nil {
			t.Errorf("call %d context ended after the batch: %v", i, c.Err())
		}
	}
}

func TestAnalysis_MarshalJSON(t *testing.T) {
	a := NewAnalyzer(testEngine(replying(fullAnswer, nil)), WithRand(rand.New(rand.NewPCG(3, 4))))
	p := healthPitch
	p.Kind = KindVideo
	got, err := a.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"id", "pitchId", "createdAt", "overallScore", "categoryScores", "voiceAnalysis", "agentsUsed", "pitchData", "provenance"} {
		if _, ok := out[key]; !ok {
			t.Errorf("JSON lacks %q: %s", key, data)
		}
	}
	if out["pitchId"] != "p-42" || out["id"] != "analysis-1" {
		t.Errorf("pitchId = %v, id = %v", out["pitchId"], out["id"])
	}
	if pd := out["pitchData"].(map[string]any); pd["pitchType"] != "video" {
		t.Errorf("pitchData = %v", pd)
	}
}

package pitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/leofalp/pitchlens/core/engine"
	"github.com/leofalp/pitchlens/core/record"
	"github.com/leofalp/pitchlens/core/recovery"
	"github.com/leofalp/pitchlens/core/retry"
	"github.com/leofalp/pitchlens/providers/ai"
	"github.com/leofalp/pitchlens/providers/ai/mistral"
	"github.com/leofalp/pitchlens/providers/observability"
	"github.com/leofalp/pitchlens/providers/speech"
)

const (
	// AnalysisTemperature and AnalysisMaxTokens tune the analysis call.
	AnalysisTemperature = 0.7
	AnalysisMaxTokens   = 2000

	// DefaultLanguage is the transcription language when a pitch sets none.
	DefaultLanguage = "eng"

	// DegradedResponse replaces the analysis response when the LLM provider
	// kept rate limiting.
	DegradedResponse = "Analysis unavailable: the AI provider is rate limiting requests. Please try again later."

	// DegradedTranscript replaces the transcript when the speech provider
	// kept rate limiting.
	DegradedTranscript = "Transcription unavailable: the speech provider is rate limiting requests."
)

// AgentsUsed lists the analysis stages reported with every analysis.
var AgentsUsed = []string{
	"Pitch Analysis Agent",
	"Mistral Analysis Agent",
	"Market Research Agent",
	"Financial Modeling Agent",
	"Presentation Enhancement Agent",
}

// ErrNoTranscriber is returned by AnalyzeMedia on an analyzer built without
// a speech.Transcriber.
var ErrNoTranscriber = errors.New("pitch: no transcriber configured")

// VoiceAnalysis is the delivery assessment of a spoken pitch.
type VoiceAnalysis struct {
	Clarity     int      `json:"clarity"`
	Pace        int      `json:"pace"`
	Confidence  int      `json:"confidence"`
	Suggestions []string `json:"suggestions"`
}

var voiceSuggestions = []string{
	"Maintain consistent speaking pace",
	"Add more vocal variety for emphasis",
	"Practice clear pronunciation of technical terms",
}

// Analysis is the result of analysing one pitch.
type Analysis struct {
	Record *record.Record

	// VoiceAnalysis is nil for text pitches.
	VoiceAnalysis *VoiceAnalysis
	AgentsUsed    []string
	Pitch         Pitch

	// Transcription is the recognised text of a media pitch.
	Transcription string

	// Stage is the recovery stage that produced the record.
	Stage recovery.Stage
	// Degraded is set when the LLM or the speech provider kept rate limiting.
	Degraded bool
}

// MarshalJSON writes the record fields flat, followed by voiceAnalysis,
// agentsUsed and the original pitch under pitchData.
func (a *Analysis) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(a.Record)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	out["voiceAnalysis"] = a.VoiceAnalysis
	out["agentsUsed"] = a.AgentsUsed
	out["pitchData"] = a.Pitch
	out["degraded"] = a.Degraded
	if a.Transcription != "" {
		out["transcription"] = a.Transcription
	}
	return json.Marshal(out)
}

// Analyzer scores pitches. It is safe for concurrent use.
type Analyzer struct {
	engine      *engine.Engine
	transcriber speech.Transcriber
	policy      retry.Policy
	model       string
	observer    observability.Provider

	randMu sync.Mutex
	rand   *rand.Rand
}

// AnalyzerOption configures an [Analyzer].
type AnalyzerOption func(*Analyzer)

// WithTranscriber enables AnalyzeMedia.
func WithTranscriber(t speech.Transcriber) AnalyzerOption {
	return func(a *Analyzer) {
		a.transcriber = t
	}
}

// WithRand makes the voice analysis deterministic.
func WithRand(r *rand.Rand) AnalyzerOption {
	return func(a *Analyzer) {
		a.rand = r
	}
}

// WithAnalysisModel overrides the LLM model.
func WithAnalysisModel(model string) AnalyzerOption {
	return func(a *Analyzer) {
		a.model = model
	}
}

// WithTranscriptionPolicy sets the retry policy of transcription calls.
func WithTranscriptionPolicy(p retry.Policy) AnalyzerOption {
	return func(a *Analyzer) {
		a.policy = p
	}
}

// WithAnalyzerObserver logs transcription retries.
func WithAnalyzerObserver(o observability.Provider) AnalyzerOption {
	return func(a *Analyzer) {
		a.observer = o
	}
}

// NewAnalyzer creates an analyzer running its LLM calls through eng.
func NewAnalyzer(eng *engine.Engine, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		engine: eng,
		policy: retry.DefaultPolicy(),
		model:  mistral.DefaultModel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores p. The result is complete even when the model answered
// with broken or no JSON. A pitch without a kind is treated as text.
func (a *Analyzer) Analyze(ctx context.Context, p Pitch) (*Analysis, error) {
	if p.Kind == "" {
		p.Kind = KindText
	}

	degraded, err := json.Marshal(map[string]string{"response": DegradedResponse})
	if err != nil {
		return nil, err
	}

	out, err := a.engine.Run(ctx, engine.Request{
		Chat: ai.ChatRequest{
			Model:          a.model,
			SystemPrompt:   analysisSystemPrompt,
			Messages:       []ai.Message{ai.UserMessage(analysisPrompt(p))},
			ResponseFormat: ai.JSONObject,
			GenerationConfig: &ai.GenerationConfig{
				Temperature: AnalysisTemperature,
				MaxTokens:   AnalysisMaxTokens,
			},
		},
		Schema: AnalysisSchema(),
		Context: record.Context{
			SubjectID: p.ID,
			Labels:    map[string]string{LabelKind: string(p.Kind)},
		},
		DegradedText: string(degraded),
	})
	if err != nil {
		return nil, fmt.Errorf("pitch: analyze %q: %w", p.Title, err)
	}

	return &Analysis{
		Record:        out.Record,
		VoiceAnalysis: a.voiceAnalysis(p.Kind),
		AgentsUsed:    append([]string(nil), AgentsUsed...),
		Pitch:         p,
		Stage:         out.Stage,
		Degraded:      out.Degraded,
	}, nil
}

// Media is an uploaded recording of a pitch.
type Media struct {
	FileName string

	// Open returns a fresh reader over the recording. It is called once per
	// transcription attempt.
	Open func() (io.ReadCloser, error)
}

// AnalyzeMedia transcribes the recording, uses the transcript as the pitch
// content and analyses it. The pitch kind follows the file extension.
func (a *Analyzer) AnalyzeMedia(ctx context.Context, p Pitch, m Media) (*Analysis, error) {
	kind, err := MediaKind(m.FileName)
	if err != nil {
		return nil, err
	}
	p.Kind = kind

	transcript, degraded, err := a.Transcribe(ctx, m, p.LanguageCode)
	if err != nil {
		return nil, err
	}
	p.Content = transcript

	analysis, err := a.Analyze(ctx, p)
	if err != nil {
		return nil, err
	}
	analysis.Transcription = transcript
	analysis.Degraded = analysis.Degraded || degraded
	return analysis, nil
}

// Transcribe runs the transcriber under the retry policy. When every attempt
// is rate limited it returns [DegradedTranscript] and degraded set.
func (a *Analyzer) Transcribe(ctx context.Context, m Media, languageCode string) (text string, degraded bool, err error) {
	if a.transcriber == nil {
		return "", false, ErrNoTranscriber
	}
	if languageCode == "" {
		languageCode = DefaultLanguage
	}

	policy := a.policy
	policy.DegradedText = DegradedTranscript
	if a.observer != nil {
		next := policy.OnRetry
		policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			a.observer.Warn(ctx, "transcription rate limited, backing off",
				observability.Int(observability.AttrRetryAttempt, attempt),
				observability.Duration(observability.AttrRetryWait, wait),
				observability.Error(err),
			)
			if next != nil {
				next(attempt, wait, err)
			}
		}
	}

	res, err := retry.DoText(ctx, policy, func(ctx context.Context) (string, error) {
		rc, err := m.Open()
		if err != nil {
			return "", fmt.Errorf("pitch: open %q: %w", m.FileName, err)
		}
		defer rc.Close()

		tr, err := a.transcriber.Transcribe(ctx, speech.TranscribeRequest{
			Audio:        rc,
			FileName:     m.FileName,
			LanguageCode: languageCode,
			Diarize:      true,
		})
		if err != nil {
			return "", err
		}
		return tr.Text, nil
	})
	if err != nil {
		return "", false, fmt.Errorf("pitch: transcribe %q: %w", m.FileName, err)
	}
	return res.Value, res.Degraded, nil
}

func (a *Analyzer) voiceAnalysis(kind ContentKind) *VoiceAnalysis {
	if !kind.Spoken() {
		return nil
	}
	return &VoiceAnalysis{
		Clarity:     a.intBetween(75, 95),
		Pace:        a.intBetween(70, 90),
		Confidence:  a.intBetween(75, 95),
		Suggestions: append([]string(nil), voiceSuggestions...),
	}
}

// intBetween returns a value in [lo, hi].
func (a *Analyzer) intBetween(lo, hi int) int {
	if a.rand == nil {
		return lo + rand.IntN(hi-lo+1)
	}
	a.randMu.Lock()
	defer a.randMu.Unlock()
	return lo + a.rand.IntN(hi-lo+1)
}

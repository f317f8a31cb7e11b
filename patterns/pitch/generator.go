package pitch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/leofalp/pitchlens/core/engine"
	"github.com/leofalp/pitchlens/core/record"
	"github.com/leofalp/pitchlens/core/recovery"
	"github.com/leofalp/pitchlens/core/retry"
	"github.com/leofalp/pitchlens/providers/ai"
	"github.com/leofalp/pitchlens/providers/ai/mistral"
	"github.com/leofalp/pitchlens/providers/observability"
)

const (
	// GenerationMaxTokens bounds the generated pitch.
	GenerationMaxTokens = 2048

	// SlideModel formats generated pitches.
	SlideModel = "mistral-tiny"

	// FallbackSlide is returned by Presenter.Format when formatting fails.
	FallbackSlide = "Could not format pitch."
)

// Generated is a drafted pitch.
type Generated struct {
	Topic  string
	Record *record.Record
	Stage  recovery.Stage

	Degraded  bool
	Truncated bool
}

// MarshalJSON writes the pitch record.
func (g *Generated) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Record)
}

// Generator drafts pitches for a topic.
type Generator struct {
	engine *engine.Engine
	model  string
}

// NewGenerator creates a generator running its calls through eng.
func NewGenerator(eng *engine.Engine) *Generator {
	return &Generator{engine: eng, model: mistral.DefaultModel}
}

// Generate drafts a pitch with problem, solution, market and business_model.
// Fields the model did not deliver carry the topic-based defaults.
func (g *Generator) Generate(ctx context.Context, topic string) (*Generated, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("pitch: topic is empty")
	}

	out, err := g.engine.Run(ctx, engine.Request{
		Chat: ai.ChatRequest{
			Model:            g.model,
			Messages:         []ai.Message{ai.UserMessage(generationPrompt(topic))},
			GenerationConfig: &ai.GenerationConfig{MaxTokens: GenerationMaxTokens},
		},
		Schema: PitchSchema(topic),
	})
	if err != nil {
		return nil, fmt.Errorf("pitch: generate %q: %w", topic, err)
	}

	return &Generated{
		Topic:     topic,
		Record:    out.Record,
		Stage:     out.Stage,
		Degraded:  out.Degraded,
		Truncated: out.Truncated,
	}, nil
}

// Script is the narration text of a generated pitch.
func (g *Generated) Script() string {
	r := g.Record
	return fmt.Sprintf("Problem: %s\nSolution: %s\nMarket: %s\nBusiness Model: %s",
		r.String("problem"), r.String("solution"), r.String("market"), r.String("business_model"))
}

// Presenter rewrites generated pitches as pitch-deck slides.
type Presenter struct {
	provider ai.Provider
	policy   retry.Policy
	observer observability.Provider
}

// NewPresenter creates a presenter. A nil observer disables logging.
func NewPresenter(provider ai.Provider, policy retry.Policy, observer observability.Provider) *Presenter {
	return &Presenter{provider: provider, policy: policy, observer: observer}
}

// Format returns slide Markdown for g. On any failure, rate limits included,
// it returns [FallbackSlide] together with the cause.
func (p *Presenter) Format(ctx context.Context, g *Generated) (string, error) {
	data, err := json.MarshalIndent(g.Record.Values(), "", "  ")
	if err != nil {
		return FallbackSlide, err
	}

	start := time.Now()
	res, err := retry.Do(ctx, p.policy, func(ctx context.Context) (string, error) {
		resp, err := p.provider.SendMessage(ctx, ai.ChatRequest{
			Model:    SlideModel,
			Messages: []ai.Message{ai.UserMessage(slidePrompt(string(data)))},
		})
		if err != nil {
			return "", err
		}
		if ov := ai.OverviewFromContext(ctx); ov != nil {
			ov.AddResponse(resp)
		}
		return resp.Content, nil
	})
	switch {
	case err != nil:
	case res.Degraded:
		err = fmt.Errorf("pitch: slide formatting rate limited: %w", res.Cause)
	case strings.TrimSpace(res.Value) == "":
		err = fmt.Errorf("pitch: slide formatting returned no content")
	default:
		return res.Value, nil
	}

	if p.observer != nil {
		p.observer.Warn(ctx, "slide formatting failed",
			observability.Error(err),
			observability.Duration(observability.AttrDuration, time.Since(start)),
		)
	}
	return FallbackSlide, err
}

package pitch

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/pitchlens/core/retry"
	"github.com/leofalp/pitchlens/providers/speech"
)

// ErrNarrationUnavailable is returned when the speech provider kept rate
// limiting.
var ErrNarrationUnavailable = errors.New("pitch: narration unavailable, speech provider is rate limiting requests")

// Narrator reads analyses and generated pitches aloud.
type Narrator struct {
	synth  speech.Synthesizer
	policy retry.Policy
	voice  string
}

// NewNarrator creates a narrator. An empty voice uses the provider default.
func NewNarrator(synth speech.Synthesizer, policy retry.Policy, voice string) *Narrator {
	return &Narrator{synth: synth, policy: policy, voice: voice}
}

// NarrateAnalysis speaks the analysis response.
func (n *Narrator) NarrateAnalysis(ctx context.Context, a *Analysis) (*speech.Audio, error) {
	return n.Narrate(ctx, a.Record.String("response"))
}

// NarratePitch speaks the script of a generated pitch.
func (n *Narrator) NarratePitch(ctx context.Context, g *Generated) (*speech.Audio, error) {
	return n.Narrate(ctx, g.Script())
}

// Narrate synthesizes text under the retry policy.
func (n *Narrator) Narrate(ctx context.Context, text string) (*speech.Audio, error) {
	res, err := retry.Do(ctx, n.policy, func(ctx context.Context) (*speech.Audio, error) {
		return n.synth.Synthesize(ctx, speech.SynthesizeRequest{Text: text, VoiceID: n.voice})
	})
	if err != nil {
		return nil, fmt.Errorf("pitch: narrate: %w", err)
	}
	if res.Degraded {
		return nil, fmt.Errorf("%w: %v", ErrNarrationUnavailable, res.Cause)
	}
	return res.Value, nil
}

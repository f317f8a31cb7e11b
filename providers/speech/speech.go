package speech

import (
	"context"
	"errors"
	"io"
)

// ErrNoSpeech is returned when a transcription succeeds but contains no text.
var ErrNoSpeech = errors.New("speech: no speech detected")

// TranscribeRequest describes an audio upload to transcribe.
type TranscribeRequest struct {
	// Audio is read once. Callers retrying a transcription must supply a
	// fresh reader per attempt.
	Audio    io.Reader
	FileName string

	// LanguageCode is an ISO 639-3 code such as "eng". Empty lets the
	// provider detect the language.
	LanguageCode string

	// Diarize asks the provider to separate speakers.
	Diarize bool
}

// Transcript is the text recognised in an audio file.
type Transcript struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Transcriber converts speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (*Transcript, error)
}

// SynthesizeRequest describes a text to narrate. Empty fields take the
// provider defaults.
type SynthesizeRequest struct {
	Text         string
	VoiceID      string
	Model        string
	OutputFormat string
}

// Audio is synthesized speech.
type Audio struct {
	Data        []byte
	ContentType string
}

// Synthesizer converts text to speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesizeRequest) (*Audio, error)
}

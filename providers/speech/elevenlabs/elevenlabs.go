package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/leofalp/pitchlens/internal/utils"
	"github.com/leofalp/pitchlens/providers/observability"
	"github.com/leofalp/pitchlens/providers/speech"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io/v1"
	speechToTextPath    = "/speech-to-text"
	textToSpeechPathFmt = "/text-to-speech/%s"

	// DefaultTranscriptionModel is the speech-to-text model.
	DefaultTranscriptionModel = "scribe_v1"
	// DefaultSpeechModel is the text-to-speech model.
	DefaultSpeechModel = "eleven_multilingual_v2"
	// DefaultVoice is the public "Rachel" voice.
	DefaultVoice = "EXAVITQu4vr4xnSDxMaL"
	// DefaultOutputFormat is MP3 at 44.1kHz, 128kbps.
	DefaultOutputFormat = "mp3_44100_128"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("elevenlabs: API key is not set")
	// ErrEmptyText is returned by Synthesize for blank text.
	ErrEmptyText = errors.New("elevenlabs: text is empty")
)

// Provider is an ElevenLabs client.
type Provider struct {
	apiKey             string
	baseURL            string
	client             *http.Client
	limiter            *rate.Limiter
	transcriptionModel string
	speechModel        string
	voice              string
	outputFormat       string
}

var (
	_ speech.Transcriber = (*Provider)(nil)
	_ speech.Synthesizer = (*Provider)(nil)
)

// New creates a provider configured from the environment.
func New() *Provider {
	baseURL := os.Getenv("ELEVENLABS_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:             os.Getenv("ELEVENLABS_API_KEY"),
		baseURL:            baseURL,
		client:             &http.Client{Timeout: utils.DefaultTimeout},
		transcriptionModel: DefaultTranscriptionModel,
		speechModel:        DefaultSpeechModel,
		voice:              DefaultVoice,
		outputFormat:       DefaultOutputFormat,
	}
}

func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	return p
}

func (p *Provider) WithHttpClient(client *http.Client) *Provider {
	p.client = client
	return p
}

// WithVoice sets the voice used when a request names none.
func (p *Provider) WithVoice(voiceID string) *Provider {
	p.voice = voiceID
	return p
}

// WithRateLimit allows at most rps requests per second with the given burst.
// A non-positive rps disables limiting.
func (p *Provider) WithRateLimit(rps float64, burst int) *Provider {
	if rps <= 0 {
		p.limiter = nil
		return p
	}
	if burst < 1 {
		burst = 1
	}
	p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return p
}

type transcriptionResponse struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

// Transcribe uploads req.Audio to the speech-to-text endpoint. A transcript
// with no text yields [speech.ErrNoSpeech].
func (p *Provider) Transcribe(ctx context.Context, req speech.TranscribeRequest) (*speech.Transcript, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	if req.Audio == nil {
		return nil, errors.New("elevenlabs: no audio to transcribe")
	}

	fields := map[string]string{
		"model_id":         p.transcriptionModel,
		"tag_audio_events": "false",
		"diarize":          fmt.Sprint(req.Diarize),
	}
	if req.LanguageCode != "" {
		fields["language_code"] = req.LanguageCode
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = "audio"
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventSpeechRequest,
			observability.String(observability.AttrSpeechProvider, "elevenlabs"),
			observability.String(observability.AttrSpeechModel, p.transcriptionModel),
			observability.String(observability.AttrSpeechLanguage, req.LanguageCode),
		)
	}

	_, body, err := utils.PostMultipart(ctx, p.client, p.baseURL+speechToTextPath, p.header(),
		fields, utils.FilePart{Field: "file", FileName: fileName, Content: req.Audio})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}

	var resp transcriptionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("elevenlabs: decoding transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, speech.ErrNoSpeech
	}
	return &speech.Transcript{Text: text, LanguageCode: resp.LanguageCode}, nil
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize narrates req.Text and returns the encoded audio.
func (p *Provider) Synthesize(ctx context.Context, req speech.SynthesizeRequest) (*speech.Audio, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if err := p.ready(ctx); err != nil {
		return nil, err
	}

	voice := firstNonEmpty(req.VoiceID, p.voice, DefaultVoice)
	model := firstNonEmpty(req.Model, p.speechModel, DefaultSpeechModel)
	format := firstNonEmpty(req.OutputFormat, p.outputFormat, DefaultOutputFormat)

	endpoint := p.baseURL + fmt.Sprintf(textToSpeechPathFmt, url.PathEscape(voice)) +
		"?" + url.Values{"output_format": {format}}.Encode()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventSpeechRequest,
			observability.String(observability.AttrSpeechProvider, "elevenlabs"),
			observability.String(observability.AttrSpeechModel, model),
			observability.String(observability.AttrSpeechVoice, voice),
		)
	}

	header := p.header()
	header.Set("Accept", "audio/mpeg")
	res, body, err := utils.PostJSON(ctx, p.client, endpoint, header, speechRequest{Text: req.Text, ModelID: model})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(observability.Int(observability.AttrSpeechBytes, len(body)))
	}
	return &speech.Audio{Data: body, ContentType: res.Header.Get("Content-Type")}, nil
}

func (p *Provider) ready(ctx context.Context) error {
	if p.apiKey == "" {
		return ErrMissingAPIKey
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("elevenlabs: waiting for rate limiter: %w", err)
		}
	}
	return nil
}

func (p *Provider) header() http.Header {
	h := http.Header{}
	h.Set("xi-api-key", p.apiKey)
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/pitchlens/core/retry"
	"github.com/leofalp/pitchlens/providers/speech"
)

func newTestProvider(server *httptest.Server) *Provider {
	return New().WithAPIKey("xi-test").WithBaseURL(server.URL).WithHttpClient(server.Client())
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "env-key")
	t.Setenv("ELEVENLABS_API_BASE_URL", "")

	p := New()
	if p.apiKey != "env-key" || p.baseURL != defaultBaseURL {
		t.Errorf("apiKey = %q, baseURL = %q", p.apiKey, p.baseURL)
	}
	if p.voice != DefaultVoice || p.transcriptionModel != DefaultTranscriptionModel {
		t.Errorf("voice = %q, transcriptionModel = %q", p.voice, p.transcriptionModel)
	}
}

func TestTranscribe(t *testing.T) {
	var gotFields map[string]string
	var gotFile, gotFileName string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speech-to-text" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if key := r.Header.Get("xi-api-key"); key != "xi-test" {
			t.Errorf("xi-api-key = %q", key)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		data, _ := io.ReadAll(f)
		gotFile, gotFileName = string(data), hdr.Filename

		json.NewEncoder(w).Encode(map[string]any{"text": "  We sell pitches.  ", "language_code": "eng"})
	}))
	defer server.Close()

	tr, err := newTestProvider(server).Transcribe(context.Background(), speech.TranscribeRequest{
		Audio:        strings.NewReader("ID3-fake-audio"),
		FileName:     "pitch.mp3",
		LanguageCode: "eng",
		Diarize:      true,
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if diff := cmp.Diff(&speech.Transcript{Text: "We sell pitches.", LanguageCode: "eng"}, tr); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	wantFields := map[string]string{
		"model_id":         "scribe_v1",
		"tag_audio_events": "false",
		"diarize":          "true",
		"language_code":    "eng",
	}
	if diff := cmp.Diff(wantFields, gotFields); diff != "" {
		t.Errorf("form fields mismatch (-want +got):\n%s", diff)
	}
	if gotFile != "ID3-fake-audio" || gotFileName != "pitch.mp3" {
		t.Errorf("file = %q (%q)", gotFile, gotFileName)
	}
}

func TestTranscribe_NoSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"text": "   "}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server).Transcribe(context.Background(), speech.TranscribeRequest{Audio: strings.NewReader("x")})
	if !errors.Is(err, speech.ErrNoSpeech) {
		t.Errorf("error = %v, want ErrNoSpeech", err)
	}
}

func TestStatusErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   retry.Kind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: retry.KindRateLimit},
		{name: "unauthorized", status: http.StatusUnauthorized, want: retry.KindFatal},
		{name: "server error", status: http.StatusInternalServerError, want: retry.KindFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"detail": "nope"}`, tt.status)
			}))
			defer server.Close()
			p := newTestProvider(server)

			_, sttErr := p.Transcribe(context.Background(), speech.TranscribeRequest{Audio: strings.NewReader("x")})
			_, ttsErr := p.Synthesize(context.Background(), speech.SynthesizeRequest{Text: "hi"})

			for _, err := range []error{sttErr, ttsErr} {
				if err == nil {
					t.Fatal("expected an error")
				}
				if got := retry.DefaultClassifier(err); got != tt.want {
					t.Errorf("DefaultClassifier(%v) = %v, want %v", err, got, tt.want)
				}
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	var gotBody speechRequest
	var gotPath, gotFormat string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("output_format")
		if key := r.Header.Get("xi-api-key"); key != "xi-test" {
			t.Errorf("xi-api-key = %q", key)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("MP3DATA"))
	}))
	defer server.Close()

	tests := []struct {
		name      string
		req       speech.SynthesizeRequest
		wantPath  string
		wantModel string
	}{
		{
			name:      "defaults",
			req:       speech.SynthesizeRequest{Text: "Strong pitch."},
			wantPath:  "/text-to-speech/EXAVITQu4vr4xnSDxMaL",
			wantModel: "eleven_multilingual_v2",
		},
		{
			name:      "overrides",
			req:       speech.SynthesizeRequest{Text: "Strong pitch.", VoiceID: "voice-2", Model: "eleven_turbo_v2"},
			wantPath:  "/text-to-speech/voice-2",
			wantModel: "eleven_turbo_v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audio, err := newTestProvider(server).Synthesize(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if string(audio.Data) != "MP3DATA" || audio.ContentType != "audio/mpeg" {
				t.Errorf("audio = %q (%s)", audio.Data, audio.ContentType)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotFormat != DefaultOutputFormat {
				t.Errorf("output_format = %q", gotFormat)
			}
			if diff := cmp.Diff(speechRequest{Text: "Strong pitch.", ModelID: tt.wantModel}, gotBody); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	p := New().WithAPIKey("")

	if _, err := p.Synthesize(context.Background(), speech.SynthesizeRequest{Text: " "}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("blank text error = %v", err)
	}
	if _, err := p.Synthesize(context.Background(), speech.SynthesizeRequest{Text: "hi"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("missing key error = %v", err)
	}
	if _, err := p.Transcribe(context.Background(), speech.TranscribeRequest{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("missing key error = %v", err)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	p := New().WithAPIKey("k").WithBaseURL("http://127.0.0.1:0").WithRateLimit(0.001, 1)
	p.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Synthesize(ctx, speech.SynthesizeRequest{Text: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

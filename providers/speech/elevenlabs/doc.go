// Package elevenlabs implements speech.Transcriber and speech.Synthesizer on
// top of the ElevenLabs REST API.
//
// The API key is read from ELEVENLABS_API_KEY and the base URL can be
// overridden with ELEVENLABS_API_BASE_URL:
//
//	p := elevenlabs.New().WithRateLimit(2, 1)
//	tr, err := p.Transcribe(ctx, speech.TranscribeRequest{Audio: f, FileName: "pitch.mp3"})
//
// Non-2xx responses are returned as *utils.StatusError, so a 429 is retried by
// retry.DefaultClassifier and every other status is fatal.
package elevenlabs

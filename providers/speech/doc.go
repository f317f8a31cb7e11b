// Package speech defines the provider-agnostic boundary for speech services:
// [Transcriber] turns audio into text and [Synthesizer] turns text into audio.
//
// Implementations return HTTP failures as errors carrying the status code so
// that callers can run them under the retry package like any other remote
// call. See the elevenlabs subpackage for a concrete provider.
package speech

// Package ai defines the provider-agnostic chat types shared by the engine
// and the LLM provider implementations. A provider maps [ChatRequest] to its
// wire format and returns a [ChatResponse]; errors for HTTP failures carry
// the status code so the retry layer can tell rate limits from fatal
// failures.
//
// [Overview] accumulates token usage across all calls made with a context.
package ai

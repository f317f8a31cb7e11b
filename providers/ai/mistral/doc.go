// Package mistral implements ai.Provider for the Mistral chat completions
// API. The API key is read from MISTRAL_API_KEY and the base URL from
// MISTRAL_API_BASE_URL unless set explicitly. An optional client-side rate
// limiter spaces out requests before they reach the server's 429 limit.
package mistral

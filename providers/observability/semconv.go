package observability

// --- LLM provider attributes ---

const (
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMEndpoint     = "llm.endpoint"
	AttrLLMResponseID   = "llm.response.id"
	AttrLLMFinishReason = "llm.finish_reason"
	AttrLLMTemperature  = "llm.temperature"
	AttrLLMMaxTokens    = "llm.max_tokens" // #nosec G101 -- LLM tokens, not a credential

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- LLM tokens, not a credential
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- LLM tokens, not a credential
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- LLM tokens, not a credential
)

// --- Speech attributes ---

const (
	AttrSpeechProvider = "speech.provider"
	AttrSpeechModel    = "speech.model"
	AttrSpeechVoice    = "speech.voice"
	AttrSpeechLanguage = "speech.language"
	AttrSpeechBytes    = "speech.bytes"
)

// --- HTTP attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// --- Retry and recovery attributes ---

const (
	// AttrRetryAttempt is the 1-based number of the attempt that failed.
	AttrRetryAttempt = "retry.attempt"
	AttrRetryWait    = "retry.wait"
	AttrRetryKind    = "retry.kind"

	AttrRecoveryStage  = "recovery.stage"
	AttrRecoveryParsed = "recovery.parsed"
	AttrRecoveryFields = "recovery.fields"
	AttrRecoveryReason = "recovery.reason"

	AttrSchema    = "record.schema"
	AttrSubjectID = "record.subject_id"
	AttrDegraded  = "engine.degraded"
	AttrAttempts  = "engine.attempts"
)

// --- General attributes ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span names ---

const (
	SpanEngineRun  = "engine.run"
	SpanTranscribe = "speech.transcribe"
	SpanSynthesize = "speech.synthesize"
)

// --- Event names ---

const (
	EventRetryWait      = "retry.wait"
	EventRecoveryStage  = "recovery.stage"
	EventLLMRequest     = "llm.request"
	EventTokensReceived = "llm.tokens.received" // #nosec G101 -- LLM tokens, not a credential
	EventSpeechRequest  = "speech.request"

	EventHTTPRequestPrepared = "http.request.prepared"
	EventHTTPRequestError    = "http.request.error"
	EventHTTPResponse        = "http.response.received"
)

// --- Metric names ---

const (
	MetricEngineRuns            = "pitchlens.engine.runs"
	MetricEngineDegraded        = "pitchlens.engine.degraded"
	MetricEngineDuration        = "pitchlens.engine.duration"
	MetricRecoveryStageOutcomes = "pitchlens.recovery.stage.outcomes"
	MetricRetryWaits            = "pitchlens.retry.waits"
	MetricLLMTokensTotal        = "pitchlens.llm.tokens.total" // #nosec G101 -- LLM tokens, not a credential
)

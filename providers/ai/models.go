package ai

// ChatRequest is a single chat completion request.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`
	SystemPrompt     string            `json:"system_prompt,omitempty"`
	Messages         []Message         `json:"messages"`
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"`
}

// Message is one turn of the conversation, system prompt excluded.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

type GenerationConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"` // [0..2]
	TopP        float32 `json:"top_p,omitempty"`       // [0..1]
}

// ResponseFormat asks the provider for a given output shape.
type ResponseFormat struct {
	Type string `json:"type,omitempty"` // "text" or "json_object"
}

// JSONObject requests a JSON object response.
var JSONObject = &ResponseFormat{Type: "json_object"}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse is the completed answer of a provider.
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Created      int64  `json:"created"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Truncated reports whether generation stopped at the token limit.
func (r *ChatResponse) Truncated() bool {
	return r != nil && r.FinishReason == FinishReasonLength
}

const FinishReasonLength = "length"

// MessageRole is the author of a message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

package mistral

import (
	"github.com/leofalp/pitchlens/core/cost"
	"github.com/leofalp/pitchlens/providers/ai"
)

type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    *float32            `json:"temperature,omitempty"`
	TopP           *float32            `json:"top_p,omitempty"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func requestToChatCompletion(request ai.ChatRequest, defaultModel string) chatCompletionRequest {
	out := chatCompletionRequest{
		Model:    request.Model,
		Messages: make([]chatMessage, 0, len(request.Messages)+1),
	}
	if out.Model == "" {
		out.Model = defaultModel
	}

	if request.SystemPrompt != "" {
		out.Messages = append(out.Messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, m := range request.Messages {
		out.Messages = append(out.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature != 0 {
			t := cfg.Temperature
			out.Temperature = &t
		}
		if cfg.TopP != 0 {
			p := cfg.TopP
			out.TopP = &p
		}
		out.MaxTokens = cfg.MaxTokens
	}

	if rf := request.ResponseFormat; rf != nil && rf.Type != "" {
		out.ResponseFormat = &chatResponseFormat{Type: rf.Type}
	}
	return out
}

func chatCompletionToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		Id:      resp.ID,
		Model:   resp.Model,
		Created: resp.Created,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = resp.Choices[0].FinishReason
	}
	if u := resp.Usage; u != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return out
}

// Pricing is the list price of the chat models pitchlens uses, in USD per
// million tokens.
var Pricing = cost.Pricing{
	"mistral-small-latest":  {InputCostPerMillion: 0.10, OutputCostPerMillion: 0.30},
	"mistral-tiny":          {InputCostPerMillion: 0.25, OutputCostPerMillion: 0.25},
	"mistral-medium-latest": {InputCostPerMillion: 0.40, OutputCostPerMillion: 2.00},
	"mistral-large-latest":  {InputCostPerMillion: 2.00, OutputCostPerMillion: 6.00},
}

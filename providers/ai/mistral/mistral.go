package mistral

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"github.com/leofalp/pitchlens/internal/utils"
	"github.com/leofalp/pitchlens/providers/ai"
	"github.com/leofalp/pitchlens/providers/observability"
)

const (
	defaultBaseURL          = "https://api.mistral.ai/v1"
	chatCompletionsEndpoint = "/chat/completions"

	// DefaultModel is used when a request names no model.
	DefaultModel = "mistral-small-latest"
)

// ErrMissingAPIKey is returned by SendMessage when no API key is configured.
var ErrMissingAPIKey = errors.New("mistral: API key is not set")

// Provider talks to the Mistral chat completions endpoint.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

var _ ai.Provider = (*Provider)(nil)

// New creates a provider configured from the environment.
func New() *Provider {
	baseURL := os.Getenv("MISTRAL_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  os.Getenv("MISTRAL_API_KEY"),
		baseURL: baseURL,
		model:   DefaultModel,
		client:  &http.Client{Timeout: utils.DefaultTimeout},
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

// WithModel sets the model used by requests that name none.
func (p *Provider) WithModel(model string) *Provider {
	p.model = model
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

// SendMessage implements ai.Provider. Non-2xx responses are returned as
// *utils.StatusError.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("mistral: waiting for rate limiter: %w", err)
		}
	}

	body := requestToChatCompletion(request, p.model)
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventLLMRequest,
			observability.String(observability.AttrLLMProvider, "mistral"),
			observability.String(observability.AttrLLMModel, body.Model),
			observability.Int(observability.AttrLLMMaxTokens, body.MaxTokens),
		)
	}

	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, body)
	if err != nil {
		return nil, fmt.Errorf("mistral: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("mistral: no choices in response")
	}

	out := chatCompletionToGeneric(*resp)
	if span := observability.SpanFromContext(ctx); span != nil && out.Usage != nil {
		span.AddEvent(observability.EventTokensReceived,
			observability.String(observability.AttrLLMResponseID, out.Id),
			observability.String(observability.AttrLLMFinishReason, out.FinishReason),
			observability.Int(observability.AttrLLMTokensTotal, out.Usage.TotalTokens),
		)
	}
	return out, nil
}

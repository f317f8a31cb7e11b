package cost

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leofalp/pitchlens/providers/ai"
)

// Currency of every amount in this package.
const Currency = "USD"

// ModelCost represents the pricing structure for a language model.
// Costs are expressed in USD per million tokens.
//
// Example usage:
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:  0.10,
//	    OutputCostPerMillion: 0.30,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million prompt tokens
	InputCostPerMillion float64 `json:"input_cost_per_million" yaml:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million completion tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million" yaml:"output_cost_per_million"`
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// CalculateTotalCost calculates the cost of one usage record.
func (mc ModelCost) CalculateTotalCost(usage ai.Usage) float64 {
	return mc.CalculateInputCost(usage.PromptTokens) + mc.CalculateOutputCost(usage.CompletionTokens)
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// Pricing maps model names to their price.
type Pricing map[string]ModelCost

// Lookup returns the price of model. Providers often answer with a dated
// variant of the requested model ("mistral-small-2409" for
// "mistral-small-latest"), so a model missing from the table matches the
// longest entry it shares its family prefix with, "-latest" ignored.
func (p Pricing) Lookup(model string) (ModelCost, bool) {
	if mc, ok := p[model]; ok {
		return mc, true
	}

	best := ""
	for name := range p {
		family := strings.TrimSuffix(name, "-latest")
		if family != "" && strings.HasPrefix(model, family) && len(family) > len(best) {
			best = name
		}
	}
	if best == "" {
		return ModelCost{}, false
	}
	return p[best], true
}

// Summary is the estimated cost of a set of calls.
type Summary struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
	Currency   string  `json:"currency"`

	// Unpriced lists the models with usage but no price, sorted.
	Unpriced []string `json:"unpriced,omitempty"`
}

// Estimate prices the per-model usage. Models missing from pricing add
// nothing to the totals and are reported in Summary.Unpriced.
func Estimate(usage map[string]ai.Usage, pricing Pricing) Summary {
	s := Summary{Currency: Currency}
	for model, u := range usage {
		mc, ok := pricing.Lookup(model)
		if !ok {
			s.Unpriced = append(s.Unpriced, model)
			continue
		}
		s.InputCost += mc.CalculateInputCost(u.PromptTokens)
		s.OutputCost += mc.CalculateOutputCost(u.CompletionTokens)
	}
	s.TotalCost = s.InputCost + s.OutputCost
	slices.Sort(s.Unpriced)
	return s
}

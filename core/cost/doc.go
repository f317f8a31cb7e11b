// Package cost estimates the monetary cost of LLM calls from their token
// usage.
//
// [ModelCost] holds the per-token price of one model and [Pricing] maps model
// names to prices. [Estimate] turns the per-model usage collected by an
// [github.com/leofalp/pitchlens/providers/ai.Overview] into a [Summary].
package cost

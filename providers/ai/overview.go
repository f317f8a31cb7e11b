package ai

import (
	"context"
	"maps"
	"sync"
)

// Overview collects the responses and token usage of every call made with a
// context. It is safe for concurrent use, so a batch can share one.
type Overview struct {
	mu           sync.Mutex
	requests     int
	totalUsage   Usage
	byModel      map[string]Usage
	lastResponse *ChatResponse
}

type overviewKey struct{}

// ContextWithOverview returns a copy of ctx that carries o.
func ContextWithOverview(ctx context.Context, o *Overview) context.Context {
	return context.WithValue(ctx, overviewKey{}, o)
}

// OverviewFromContext returns the overview in ctx, or nil.
func OverviewFromContext(ctx context.Context) *Overview {
	o, _ := ctx.Value(overviewKey{}).(*Overview)
	return o
}

// AddResponse counts a completed call and adds its usage.
func (o *Overview) AddResponse(response *ChatResponse) {
	if response == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.requests++
	o.lastResponse = response
	if u := response.Usage; u != nil {
		o.totalUsage.add(*u)
		if o.byModel == nil {
			o.byModel = make(map[string]Usage)
		}
		m := o.byModel[response.Model]
		m.add(*u)
		o.byModel[response.Model] = m
	}
}

// Requests returns the number of completed calls.
func (o *Overview) Requests() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requests
}

// TotalUsage returns the summed usage.
func (o *Overview) TotalUsage() Usage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.totalUsage
}

// UsageByModel returns the summed usage per response model.
func (o *Overview) UsageByModel() map[string]Usage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.byModel)
}

// LastResponse returns the most recent response, or nil.
func (o *Overview) LastResponse() *ChatResponse {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastResponse
}

func (u *Usage) add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

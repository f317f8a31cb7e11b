package ai

import (
	"context"
	"sync"
	"testing"
)

func TestOverview(t *testing.T) {
	ctx := context.Background()
	if OverviewFromContext(ctx) != nil {
		t.Fatal("OverviewFromContext() on an empty context should be nil")
	}

	ov := &Overview{}
	ctx = ContextWithOverview(ctx, ov)
	if OverviewFromContext(ctx) != ov {
		t.Fatal("OverviewFromContext() did not return the stored overview")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			OverviewFromContext(ctx).AddResponse(&ChatResponse{
				Usage: &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			})
		}()
	}
	wg.Wait()
	ov.AddResponse(nil)
	ov.AddResponse(&ChatResponse{Id: "last"})

	if got := ov.Requests(); got != 11 {
		t.Errorf("Requests() = %d, want 11", got)
	}
	want := Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}
	if got := ov.TotalUsage(); got != want {
		t.Errorf("TotalUsage() = %+v, want %+v", got, want)
	}
	if got := ov.LastResponse(); got == nil || got.Id != "last" {
		t.Errorf("LastResponse() = %+v", got)
	}
}

func TestOverview_UsageByModel(t *testing.T) {
	ov := &Overview{}
	ov.AddResponse(&ChatResponse{Model: "small", Usage: &Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12}})
	ov.AddResponse(&ChatResponse{Model: "small", Usage: &Usage{PromptTokens: 5, CompletionTokens: 1, TotalTokens: 6}})
	ov.AddResponse(&ChatResponse{Model: "tiny", Usage: &Usage{PromptTokens: 1, TotalTokens: 1}})
	ov.AddResponse(&ChatResponse{Model: "no-usage"})

	got := ov.UsageByModel()
	want := map[string]Usage{
		"small": {PromptTokens: 15, CompletionTokens: 3, TotalTokens: 18},
		"tiny":  {PromptTokens: 1, TotalTokens: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("UsageByModel() = %+v, want %+v", got, want)
	}
	for model, u := range want {
		if got[model] != u {
			t.Errorf("UsageByModel()[%q] = %+v, want %+v", model, got[model], u)
		}
	}

	got["small"] = Usage{}
	if ov.UsageByModel()["small"].TotalTokens != 18 {
		t.Error("UsageByModel() returned the internal map")
	}
}

func TestChatResponse_Truncated(t *testing.T) {
	var nilResp *ChatResponse
	if nilResp.Truncated() {
		t.Error("nil response reported truncated")
	}
	if !(&ChatResponse{FinishReason: "length"}).Truncated() {
		t.Error("length finish reason not reported truncated")
	}
	if (&ChatResponse{FinishReason: "stop"}).Truncated() {
		t.Error("stop finish reason reported truncated")
	}
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(_ context.Context, req ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{Content: req.Messages[0].Content}, nil
	})

	resp, err := p.SendMessage(context.Background(), ChatRequest{Messages: []Message{UserMessage("echo")}})
	if err != nil || resp.Content != "echo" {
		t.Errorf("SendMessage() = %+v, %v", resp, err)
	}
}

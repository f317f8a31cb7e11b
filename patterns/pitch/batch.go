package pitch

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one pitch of a batch.
type BatchResult struct {
	Index    int       `json:"index"`
	Analysis *Analysis `json:"analysis,omitempty"`
	Err      error     `json:"-"`
}

// MarshalJSON adds the error message under "error".
func (r BatchResult) MarshalJSON() ([]byte, error) {
	type alias BatchResult
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// AnalyzeAll analyses pitches with at most workers calls in flight. A failed
// pitch does not stop the others; results keep the input order.
func (a *Analyzer) AnalyzeAll(ctx context.Context, pitches []Pitch, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(pitches))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range pitches {
		g.Go(func() error {
			analysis, err := a.Analyze(ctx, p)
			results[i] = BatchResult{Index: i, Analysis: analysis, Err: err}
			return nil
		})
	}
	g.Wait()

	return results
}

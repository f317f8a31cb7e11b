package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leofalp/pitchlens/core/record"
	"github.com/leofalp/pitchlens/core/recovery"
	"github.com/leofalp/pitchlens/core/retry"
	"github.com/leofalp/pitchlens/internal/utils"
	"github.com/leofalp/pitchlens/providers/ai"
	"github.com/leofalp/pitchlens/providers/observability"
)

// Request is one structured call.
type Request struct {
	Chat    ai.ChatRequest
	Schema  record.Schema
	Context record.Context

	// Policy overrides the engine policy for this call.
	Policy *retry.Policy

	// DegradedText replaces the policy placeholder when every attempt was
	// rate limited. It goes through recovery like a real answer, so it is
	// usually a small JSON object that sets the schema's text fields.
	DegradedText string
}

// Outcome is the result of a successful [Engine.Run].
type Outcome struct {
	Record *record.Record

	// Raw is the text recovery ran on.
	Raw string
	// Stage is the recovery stage that produced the mapping.
	Stage recovery.Stage
	// Attempts is the number of remote calls made.
	Attempts int
	// Degraded is set when all attempts were rate limited.
	Degraded bool
	// Truncated is set when the provider stopped at the token limit.
	Truncated bool
}

// Engine composes provider, retrier, recovery chain and assembler. It keeps
// no per-call state and is safe for concurrent use.
type Engine struct {
	provider      ai.Provider
	policy        retry.Policy
	assembler     *record.Assembler
	observer      observability.Provider
	hooks         []recovery.Hook
	libraryRepair bool

	// chains caches one compiled recovery chain per scavenge field set.
	chains sync.Map
}

// Option configures an [Engine].
type Option func(*Engine)

// WithPolicy sets the default retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithAssembler sets the record assembler, e.g. one with a fixed clock.
func WithAssembler(a *record.Assembler) Option {
	return func(e *Engine) {
		if a != nil {
			e.assembler = a
		}
	}
}

// WithObserver enables spans, metrics and logs.
func WithObserver(o observability.Provider) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithStageHook adds a hook called for every recovery stage outcome.
func WithStageHook(h recovery.Hook) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = append(e.hooks, h)
		}
	}
}

// WithoutLibraryRepair drops the jsonrepair stage from the chain.
func WithoutLibraryRepair() Option {
	return func(e *Engine) {
		e.libraryRepair = false
	}
}

// New creates an engine calling provider.
func New(provider ai.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:      provider,
		policy:        retry.DefaultPolicy(),
		assembler:     record.NewAssembler(),
		libraryRepair: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs the remote call and returns a fully populated record.
// Errors are limited to the remote call: [retry.ErrFatal] for a
// non-retryable failure and [retry.ErrTimeout] for cancellation. Rate limits
// that outlast the retry budget produce a degraded outcome, not an error.
func (e *Engine) Run(ctx context.Context, req Request) (*Outcome, error) {
	timer := utils.NewTimer()

	var span observability.Span
	if e.observer != nil {
		ctx, span = e.observer.StartSpan(ctx, observability.SpanEngineRun,
			observability.String(observability.AttrSchema, req.Schema.Name),
			observability.String(observability.AttrLLMModel, req.Chat.Model),
		)
		defer span.End()
	}

	policy := e.policy
	if req.Policy != nil {
		policy = *req.Policy
	}
	if req.DegradedText != "" {
		policy.DegradedText = req.DegradedText
	}
	policy.OnRetry = e.onRetry(ctx, span, policy.OnRetry)

	var truncated bool
	res, err := retry.DoText(ctx, policy, func(ctx context.Context) (string, error) {
		resp, err := e.provider.SendMessage(ctx, req.Chat)
		if err != nil {
			return "", err
		}
		if ov := ai.OverviewFromContext(ctx); ov != nil {
			ov.AddResponse(resp)
		}
		truncated = resp.Truncated()
		return resp.Content, nil
	})
	if err != nil {
		e.finish(ctx, span, timer, false, err)
		return nil, fmt.Errorf("engine: %s: %w", req.Schema.Name, err)
	}

	out := e.recover(ctx, req, res.Value, res.Degraded)
	out.Attempts = res.Attempts
	out.Degraded = res.Degraded
	out.Truncated = truncated && !res.Degraded

	if span != nil {
		span.SetAttributes(
			observability.Int(observability.AttrAttempts, out.Attempts),
			observability.Bool(observability.AttrDegraded, out.Degraded),
			observability.String(observability.AttrRecoveryStage, string(out.Stage)),
			observability.String(observability.AttrSubjectID, out.Record.SubjectID),
		)
	}
	e.finish(ctx, span, timer, out.Degraded, nil)
	return out, nil
}

// Recover runs the recovery chain and the assembler on text obtained
// elsewhere. It never fails.
func (e *Engine) Recover(ctx context.Context, req Request, raw string) *Outcome {
	return e.recover(ctx, req, raw, false)
}

// Default returns a record made only of the schema defaults.
func (e *Engine) Default(req Request) *record.Record {
	return e.assembler.Default(req.Schema, req.Context)
}

// recover assembles raw. Values recovered from a degraded placeholder are
// tagged as defaults since no model produced them.
func (e *Engine) recover(ctx context.Context, req Request, raw string, degraded bool) *Outcome {
	result := e.chain(req.Schema.ScavengeFields()).Run(ctx, raw)

	source := record.SourceForStage(result.Stage)
	if degraded {
		source = record.SourceDefault
	}
	rec := e.assembler.Assemble(req.Schema, result.Fields, source, req.Context)

	return &Outcome{
		Record: rec,
		Raw:    raw,
		Stage:  result.Stage,
	}
}

func (e *Engine) chain(fields []recovery.Field) *recovery.Chain {
	key := chainKey(fields)
	if c, ok := e.chains.Load(key); ok {
		return c.(*recovery.Chain)
	}

	opts := []recovery.ChainOption{recovery.WithHook(e.stageHook)}
	for _, h := range e.hooks {
		opts = append(opts, recovery.WithHook(h))
	}
	if !e.libraryRepair {
		opts = append(opts, recovery.WithoutLibraryRepair())
	}
	c, _ := e.chains.LoadOrStore(key, recovery.NewChain(fields, opts...))
	return c.(*recovery.Chain)
}

func chainKey(fields []recovery.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s\x00%s\x00%d\x01", f.Parent, f.Name, f.Hint)
	}
	return b.String()
}

// stageHook reports a stage outcome on the span carried by ctx.
func (e *Engine) stageHook(ctx context.Context, r recovery.Result) {
	if e.observer == nil {
		return
	}
	attrs := []observability.Attribute{
		observability.String(observability.AttrRecoveryStage, string(r.Stage)),
		observability.Bool(observability.AttrRecoveryParsed, r.Parsed()),
		observability.Int(observability.AttrRecoveryFields, len(r.Fields)),
	}
	if r.Reason != "" {
		attrs = append(attrs, observability.String(observability.AttrRecoveryReason, r.Reason))
	}
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventRecoveryStage, attrs...)
	}
	e.observer.Counter(observability.MetricRecoveryStageOutcomes).Add(ctx, 1, attrs[:2]...)
	e.observer.Debug(ctx, "recovery stage finished", attrs...)
}

func (e *Engine) onRetry(ctx context.Context, span observability.Span, next func(int, time.Duration, error)) func(int, time.Duration, error) {
	return func(attempt int, wait time.Duration, err error) {
		if e.observer != nil {
			attrs := []observability.Attribute{
				observability.Int(observability.AttrRetryAttempt, attempt),
				observability.Duration(observability.AttrRetryWait, wait),
				observability.Error(err),
			}
			if span != nil {
				span.AddEvent(observability.EventRetryWait, attrs...)
			}
			e.observer.Counter(observability.MetricRetryWaits).Add(ctx, 1)
			e.observer.Warn(ctx, "rate limited, backing off", attrs...)
		}
		if next != nil {
			next(attempt, wait, err)
		}
	}
}

func (e *Engine) finish(ctx context.Context, span observability.Span, timer *utils.Timer, degraded bool, err error) {
	elapsed := timer.Stop()
	if e.observer == nil {
		return
	}

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case degraded:
		status = "degraded"
	}
	statusAttr := observability.String(observability.AttrStatus, status)

	e.observer.Counter(observability.MetricEngineRuns).Add(ctx, 1, statusAttr)
	e.observer.Histogram(observability.MetricEngineDuration).Record(ctx, elapsed.Seconds(), statusAttr)
	if degraded {
		e.observer.Counter(observability.MetricEngineDegraded).Add(ctx, 1)
	}

	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		return
	}
	span.SetStatus(observability.StatusOK, status)
}

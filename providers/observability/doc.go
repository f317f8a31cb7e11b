// Package observability defines the tracing, metrics and logging interfaces
// the rest of pitchlens reports through, so the engine and the providers never
// depend on a concrete logging backend.
//
// [Provider] composes [Tracer], [Metrics] and [Logger]. The active [Span]
// travels in a [context.Context] via [ContextWithSpan] and [SpanFromContext],
// which lets the HTTP helpers attach request events to the engine's span.
//
// semconv.go holds the attribute keys, span, event and metric names.
package observability

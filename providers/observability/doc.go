// Package observability defines the interfaces and semantic conventions used
// for distributed tracing and structured logging throughout bridgo.
//
// The central entry point is [Provider], which composes [Tracer] and [Logger]
// into a single injectable dependency. Callers propagate an active [Provider]
// and [Span] through a [context.Context] using [ContextWithObserver] and
// [ContextWithSpan]; they can be retrieved with [ObserverFromContext] and
// [SpanFromContext]. All observability hooks are optional: components check
// for a nil observer/span and proceed silently when none is attached.
//
// The semconv.go file contains the standard attribute-key and event-name
// constants that should be used when recording observations, ensuring
// consistency between the store implementations and the stream accumulator.
package observability

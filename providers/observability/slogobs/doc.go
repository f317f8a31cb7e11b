// Package slogobs implements observability.Provider on top of log/slog.
// Spans, metric updates and log calls all become slog records written by a
// [Handler] in compact or JSON form. Format and level come from
// PITCHLENS_LOG_FORMAT / PITCHLENS_LOG_LEVEL (or LOG_FORMAT / LOG_LEVEL) unless
// set with [WithFormat] and [WithLevel].
package slogobs

// Package utils holds the low-level helpers shared by the providers: HTTP
// round-trips that report to the span in the context and turn non-2xx
// responses into [*StatusError], string helpers for logs, and a small
// elapsed-time [Timer].
package utils

package slogobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// Handler is a slog.Handler writing [FormatCompact] or [FormatJSON] lines.
type Handler struct {
	format Format
	level  slog.Leveler
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

// NewHandler creates a handler writing records at or above level to out.
func NewHandler(out io.Writer, format Format, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		format: format,
		level:  level,
		out:    out,
		mu:     &sync.Mutex{},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	var line []byte
	switch h.format {
	case FormatJSON:
		fields["time"] = r.Time.Format("2006-01-02T15:04:05.000Z07:00")
		fields["level"] = levelName(r.Level)
		fields["msg"] = r.Message
		data, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		line = data
	default:
		line = append(line, r.Time.Format("2006-01-02 15:04:05")...)
		line = append(line, ' ')
		line = append(line, levelName(r.Level)...)
		line = append(line, ' ')
		line = append(line, r.Message...)
		if len(fields) > 0 {
			data, err := json.Marshal(fields)
			if err != nil {
				return err
			}
			line = append(line, ' ')
			line = append(line, data...)
		}
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

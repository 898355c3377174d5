// Package slogteams connects log/slog to a teamslog.Handler.
package slogteams

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taknb2nch/teamslog"
)

// Handler is a slog.Handler delivering records through a teamslog.Handler.
//
// Records are also passed to next, when set, if the teamslog handler does
// not handle their level or if it bubbles.
type Handler struct {
	teams *teamslog.Handler
	next  slog.Handler

	fields []teamslog.Field
	prefix string
}

var _ slog.Handler = (*Handler)(nil)

// New creates a slog handler over teams. next may be nil.
func New(teams *teamslog.Handler, next slog.Handler) *Handler {
	return &Handler{teams: teams, next: next}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.teams.IsHandling(Level(level)) {
		return true
	}

	return h.next != nil && h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	level := Level(r.Level)
	handled := h.teams.IsHandling(level)

	var errs []error

	if handled {
		fields := make([]teamslog.Field, len(h.fields), len(h.fields)+r.NumAttrs())
		copy(fields, h.fields)

		r.Attrs(func(a slog.Attr) bool {
			fields = appendAttr(fields, h.prefix, a)

			return true
		})

		errs = append(errs, h.teams.Handle(ctx, teamslog.Record{
			Level:   level,
			Message: r.Message,
			Fields:  fields,
		}))
	}

	if h.next != nil && (!handled || h.teams.Bubble()) && h.next.Enabled(ctx, r.Level) {
		errs = append(errs, h.next.Handle(ctx, r))
	}

	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := h.clone()
	for _, a := range attrs {
		h2.fields = appendAttr(h2.fields, h.prefix, a)
	}

	if h.next != nil {
		h2.next = h.next.WithAttrs(attrs)
	}

	return h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := h.clone()
	h2.prefix = h.prefix + name + "."

	if h.next != nil {
		h2.next = h.next.WithGroup(name)
	}

	return h2
}

func (h *Handler) clone() *Handler {
	return &Handler{
		teams:  h.teams,
		next:   h.next,
		fields: append([]teamslog.Field(nil), h.fields...),
		prefix: h.prefix,
	}
}

// appendAttr flattens a into fields. Group members are named "group.key".
func appendAttr(fields []teamslog.Field, prefix string, a slog.Attr) []teamslog.Field {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return fields
		}

		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}

		for _, ga := range attrs {
			fields = appendAttr(fields, p, ga)
		}

		return fields
	}

	return append(fields, teamslog.Any(prefix+a.Key, a.Value.Any()))
}

// Level maps a slog level to a teamslog level.
// Levels above slog.LevelError count as critical.
func Level(l slog.Level) teamslog.Level {
	switch {
	case l > slog.LevelError:
		return teamslog.LevelCritical
	case l >= slog.LevelError:
		return teamslog.LevelError
	case l >= slog.LevelWarn:
		return teamslog.LevelWarning
	case l >= slog.LevelInfo:
		return teamslog.LevelInfo
	default:
		return teamslog.LevelDebug
	}
}

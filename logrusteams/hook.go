// Package logrusteams connects logrus to a teamslog.Handler.
package logrusteams

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/taknb2nch/teamslog"
)

// Hook is a logrus hook delivering entries through a teamslog.Handler.
// logrus always writes entries to its own output as well, so the bubble
// setting of the handler has no effect here.
type Hook struct {
	teams  *teamslog.Handler
	levels []logrus.Level
}

var _ logrus.Hook = (*Hook)(nil)

// New creates a hook firing for every logrus level the handler accepts.
func New(teams *teamslog.Handler) *Hook {
	var levels []logrus.Level

	for _, l := range logrus.AllLevels {
		if teams.IsHandling(Level(l)) {
			levels = append(levels, l)
		}
	}

	return &Hook{teams: teams, levels: levels}
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook. Entry data is sorted by key because logrus
// keeps it in a map.
func (h *Hook) Fire(e *logrus.Entry) error {
	ctx := e.Context
	if ctx == nil {
		ctx = context.Background()
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]teamslog.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, teamslog.Any(k, e.Data[k]))
	}

	return h.teams.Handle(ctx, teamslog.Record{
		Level:   Level(e.Level),
		Message: e.Message,
		Fields:  fields,
	})
}

// Level maps a logrus level to a teamslog level.
func Level(l logrus.Level) teamslog.Level {
	switch l {
	case logrus.PanicLevel:
		return teamslog.LevelEmergency
	case logrus.FatalLevel:
		return teamslog.LevelCritical
	case logrus.ErrorLevel:
		return teamslog.LevelError
	case logrus.WarnLevel:
		return teamslog.LevelWarning
	case logrus.InfoLevel:
		return teamslog.LevelInfo
	default:
		return teamslog.LevelDebug
	}
}

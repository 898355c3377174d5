// Package zapteams connects zap to a teamslog.Handler.
//
// The core is meant to be teed with the application's own core:
//
//	logger := zap.New(zapcore.NewTee(core, zapteams.NewCore(h)))
package zapteams

import (
	"context"
	"sort"

	"go.uber.org/zap/zapcore"

	"github.com/taknb2nch/teamslog"
)

// Core is a zapcore.Core delivering entries through a teamslog.Handler.
type Core struct {
	teams  *teamslog.Handler
	fields []zapcore.Field
}

var _ zapcore.Core = (*Core)(nil)

// NewCore creates a core over teams.
func NewCore(teams *teamslog.Handler) *Core {
	return &Core{teams: teams}
}

// Enabled implements zapcore.LevelEnabler.
func (c *Core) Enabled(l zapcore.Level) bool {
	return c.teams.IsHandling(Level(l))
}

// With implements zapcore.Core.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)

	return &Core{teams: c.teams, fields: all}
}

// Check implements zapcore.Core.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// Write implements zapcore.Core.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	out := make([]teamslog.Field, 0, len(c.fields)+len(fields))
	out = appendFields(out, c.fields)
	out = appendFields(out, fields)

	return c.teams.Handle(context.Background(), teamslog.Record{
		Level:   Level(ent.Level),
		Message: ent.Message,
		Fields:  out,
	})
}

// Sync implements zapcore.Core. Deliveries are synchronous.
func (c *Core) Sync() error {
	return nil
}

func appendFields(out []teamslog.Field, fields []zapcore.Field) []teamslog.Field {
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if err, ok := f.Interface.(error); ok {
				out = append(out, teamslog.Err(f.Key, err))

				continue
			}
		}

		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)

		keys := make([]string, 0, len(enc.Fields))
		for k := range enc.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			out = append(out, teamslog.Any(k, enc.Fields[k]))
		}
	}

	return out
}

// Level maps a zap level to a teamslog level.
func Level(l zapcore.Level) teamslog.Level {
	switch l {
	case zapcore.DebugLevel:
		return teamslog.LevelDebug
	case zapcore.InfoLevel:
		return teamslog.LevelInfo
	case zapcore.WarnLevel:
		return teamslog.LevelWarning
	case zapcore.ErrorLevel:
		return teamslog.LevelError
	case zapcore.DPanicLevel:
		return teamslog.LevelCritical
	case zapcore.PanicLevel:
		return teamslog.LevelAlert
	case zapcore.FatalLevel:
		return teamslog.LevelEmergency
	}

	if l < zapcore.DebugLevel {
		return teamslog.LevelDebug
	}

	return teamslog.LevelEmergency
}

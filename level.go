package teamslog

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
)

// Level defines the severity of a log record.
// The numeric values follow syslog ordering: a higher value is more severe.
type Level int

const (
	LevelDebug     Level = 100
	LevelInfo      Level = 200
	LevelNotice    Level = 250
	LevelWarning   Level = 300
	LevelError     Level = 400
	LevelCritical  Level = 500
	LevelAlert     Level = 550
	LevelEmergency Level = 600
)

var levelNames = map[Level]string{
	LevelDebug:     "DEBUG",
	LevelInfo:      "INFO",
	LevelNotice:    "NOTICE",
	LevelWarning:   "WARNING",
	LevelError:     "ERROR",
	LevelCritical:  "CRITICAL",
	LevelAlert:     "ALERT",
	LevelEmergency: "EMERGENCY",
}

var levelMap = map[string]Level{
	"debug":     LevelDebug,
	"info":      LevelInfo,
	"notice":    LevelNotice,
	"warning":   LevelWarning,
	"warn":      LevelWarning,
	"error":     LevelError,
	"critical":  LevelCritical,
	"fatal":     LevelCritical,
	"alert":     LevelAlert,
	"emergency": LevelEmergency,
	"panic":     LevelEmergency,
}

// defaultLevel is the minimum level of handlers built without WithLevel.
// It can be changed at startup through the TEAMSLOG_LEVEL environment variable.
var defaultLevel = LevelDebug

func init() {
	setupLevelFromEnv()
}

// setupLevelFromEnv reads TEAMSLOG_LEVEL and adjusts defaultLevel.
func setupLevelFromEnv() {
	levelStr := os.Getenv(envLevel)

	if levelStr == "" {
		return
	}

	level, err := ParseLevel(levelStr)
	if err != nil {
		log.Printf("teamslog: invalid %s value %q, using default level", envLevel, levelStr)

		return
	}

	defaultLevel = level
}

// String returns the upper-case name of the level, e.g. "ERROR".
// Unknown values are rendered as "LEVEL(n)".
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return "LEVEL(" + strconv.Itoa(int(l)) + ")"
}

// ParseLevel parses a level name. It is case-insensitive and accepts the
// common aliases "warn", "fatal" and "panic".
func ParseLevel(levelStr string) (Level, error) {
	if level, ok := levelMap[strings.ToLower(strings.TrimSpace(levelStr))]; ok {
		return level, nil
	}

	return 0, errors.New("invalid log level: " + levelStr)
}

// canonicalLevelName maps a free-form level name to its canonical lower-case
// form. Names that are not known are returned lower-cased.
func canonicalLevelName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	if level, ok := levelMap[lower]; ok {
		return strings.ToLower(levelNames[level])
	}

	return lower
}

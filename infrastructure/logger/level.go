package logger

import (
	"strings"

	"github.com/pkg/errors"
)

// Level is the minimum severity a logger or writer lets through
type Level uint32

// Levels, in increasing severity
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

type levelNames struct {
	tag  string
	name string
}

var levels = [...]levelNames{
	LevelTrace:    {tag: "TRC", name: "trace"},
	LevelDebug:    {tag: "DBG", name: "debug"},
	LevelInfo:     {tag: "INF", name: "info"},
	LevelWarn:     {tag: "WRN", name: "warn"},
	LevelError:    {tag: "ERR", name: "error"},
	LevelCritical: {tag: "CRT", name: "critical"},
	LevelOff:      {tag: "OFF", name: "off"},
}

// LevelFromString returns the level named s, by its name or its tag, in any
// case. Unknown names return LevelInfo and false.
func LevelFromString(s string) (Level, bool) {
	s = strings.ToLower(s)
	for level, names := range levels {
		if s == names.name || s == strings.ToLower(names.tag) {
			return Level(level), true
		}
	}
	return LevelInfo, false
}

// ParseLevel is LevelFromString returning an error for unknown names
func ParseLevel(s string) (Level, error) {
	level, ok := LevelFromString(s)
	if !ok {
		return LevelInfo, errors.Errorf("the specified log level [%s] is invalid", s)
	}
	return level, nil
}

// String returns the three letter tag written in log lines
func (l Level) String() string {
	if l >= LevelOff {
		return levels[LevelOff].tag
	}
	return levels[l].tag
}

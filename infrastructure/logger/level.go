package logger

import "strings"

// Level is a message severity. A logger drops every message below its
// configured level.
type Level uint32

// Severity levels, ordered from chattiest to silent.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// levelStrs holds the three-letter tag of each level, indexed by the level
// itself.
var levelStrs = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

// LevelFromString parses a level from its long or short name, matched without
// regard to case. The second return value reports whether the name was
// recognized; unrecognized names fall back to LevelInfo.
func LevelFromString(s string) (Level, bool) {
	switch strings.ToLower(s) {
	case "trace", "trc":
		return LevelTrace, true
	case "debug", "dbg":
		return LevelDebug, true
	case "info", "inf":
		return LevelInfo, true
	case "warn", "wrn":
		return LevelWarn, true
	case "error", "err":
		return LevelError, true
	case "critical", "crt":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}

// String returns the three-letter tag written into log message headers, or
// "OFF" for any level that produces no output.
func (l Level) String() string {
	if l >= LevelOff {
		return "OFF"
	}
	return levelStrs[l]
}

package logger

import "fmt"

// Level defines the logging level.
type Level int

const (
	// LevelUnknown is an unknown level.
	LevelUnknown Level = iota - 1

	// LevelDisabled means the logging is disabled and no messages will be
	// logged.
	LevelDisabled

	// LevelError means only error messages will be logged.
	LevelError

	// LevelWarn means warning and error messages will be logged.
	LevelWarn

	// LevelInfo means info, warning and error messages will be logged.
	LevelInfo

	// LevelDebug means debug, info, warning and error messages will be logged.
	LevelDebug

	// LevelTrace means all messages will be logged.
	LevelTrace
)

const (
	levelDisabledString = "disabled"
	levelErrorString    = "error"
	levelWarnString     = "warn"
	levelInfoString     = "info"
	levelDebugString    = "debug"
	levelTraceString    = "trace"
)

// String returns a string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return levelErrorString
	case LevelWarn:
		return levelWarnString
	case LevelInfo:
		return levelInfoString
	case LevelDebug:
		return levelDebugString
	case LevelTrace:
		return levelTraceString
	case LevelDisabled:
		return levelDisabledString
	case LevelUnknown:
		fallthrough
	default:
		return fmt.Sprintf("Unknown(%d)", l)
	}
}

// LevelFromString parses a level name. The second return value is false when
// the name is not recognized.
func LevelFromString(name string) (Level, bool) {
	switch name {
	case levelErrorString:
		return LevelError, true
	case levelWarnString:
		return LevelWarn, true
	case levelInfoString:
		return LevelInfo, true
	case levelDebugString:
		return LevelDebug, true
	case levelTraceString:
		return LevelTrace, true
	case levelDisabledString:
		return LevelDisabled, true
	default:
		return LevelUnknown, false
	}
}

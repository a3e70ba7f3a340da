package trace

import "fmt"

// Level controls how fine-grained the emitted events are.
type Level uint8

const (
	LevelOff   Level = iota // no tracing
	LevelRun                // whole-run span only
	LevelFile               // plus per-file spans
	LevelPhase              // plus per-phase spans inside each file
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelRun:
		return "run"
	case LevelFile:
		return "file"
	case LevelPhase:
		return "phase"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off":
		return LevelOff, nil
	case "run":
		return LevelRun, nil
	case "file":
		return LevelFile, nil
	case "phase":
		return LevelPhase, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level %q (expected off|run|file|phase)", s)
	}
}

// ShouldEmit reports whether events at scope pass the level filter.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelRun:
		return scope <= ScopeRun
	case LevelFile:
		return scope <= ScopeFile
	case LevelPhase:
		return true
	}
	return false
}

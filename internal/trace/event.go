package trace

import "time"

// Kind distinguishes span boundaries from instant events.
type Kind uint8

const (
	KindBegin Kind = iota + 1 // span start
	KindEnd                   // span end
	KindPoint                 // instant event
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope marks the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeRun   Scope = iota + 1 // a whole VerifyDir/VerifyFile call
	ScopeFile                   // one input file's pipeline
	ScopePhase                  // parse, validate, or verify inside a file
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopeFile:
		return "file"
	case ScopePhase:
		return "phase"
	default:
		return "unknown"
	}
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // global monotonic sequence
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64 // goroutine id, for interleaved parallel spans
	Name     string // e.g. "file:lib/main.kir", "phase:verify"
	Detail   string
}

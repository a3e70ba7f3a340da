package driver

// ProgressStage identifies the pipeline phase an event refers to.
type ProgressStage uint8

const (
	StageParse ProgressStage = iota + 1
	StageValidate
	StageVerify
)

func (s ProgressStage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageValidate:
		return "validate"
	case StageVerify:
		return "verify"
	default:
		return "unknown"
	}
}

// ProgressStatus tells whether a stage started, passed, or found errors.
type ProgressStatus uint8

const (
	StatusStart ProgressStatus = iota + 1
	StatusOK
	StatusFailed
)

func (s ProgressStatus) String() string {
	switch s {
	case StatusStart:
		return "start"
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressEvent describes one file advancing through the pipeline.
// Path is relative to the run's base directory.
type ProgressEvent struct {
	Path   string
	Stage  ProgressStage
	Status ProgressStatus
}

// ProgressSink receives events from concurrent pipeline goroutines.
// Implementations must be goroutine-safe.
type ProgressSink interface {
	Publish(ev ProgressEvent)
}

// emit forwards to the sink when one is set.
func emitProgress(s ProgressSink, ev ProgressEvent) {
	if s != nil {
		s.Publish(ev)
	}
}

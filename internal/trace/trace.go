// Package trace records what the verification pipeline spends its time
// on. Spans cover the whole run, individual files, and the phases inside
// a file; a Tracer serializes them to a stream for later inspection.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events from the pipeline.
type Tracer interface {
	// Emit records one event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush writes out any buffered events.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the active verbosity.
	Level() Level

	// Enabled reports whether tracing is active at all.
	Enabled() bool
}

// nopTracer discards everything.
type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the shared no-op tracer.
var Nop Tracer = nopTracer{}

// Config describes where and how verbosely to trace.
type Config struct {
	Level      Level
	Format     Format    // FormatAuto picks from the output path
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or empty means stderr
}

// New builds a Tracer from cfg. A LevelOff config yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}

	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".json") {
			format = FormatNDJSON
		}
	}

	w := cfg.Output
	if w == nil {
		if cfg.OutputPath == "" || cfg.OutputPath == "-" {
			w = os.Stderr
		} else {
			f, err := os.Create(cfg.OutputPath)
			if err != nil {
				return nil, fmt.Errorf("open trace output: %w", err)
			}
			w = f
		}
	}

	return NewStreamTracer(w, cfg.Level, format), nil
}

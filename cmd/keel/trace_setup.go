package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keel/internal/trace"
)

// setupTracing reads the trace flags and builds a tracer. The returned
// cleanup flushes and closes it; callers must run it even on error paths
// because cobra skips PersistentPostRun there.
func setupTracing(cmd *cobra.Command) (trace.Tracer, func(), error) {
	root := cmd.Root()

	output, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}
	// --trace without an explicit level means "trace files".
	if output != "" && level == trace.LevelOff {
		level = trace.LevelFile
	}
	if level == trace.LevelOff {
		return trace.Nop, func() {}, nil
	}

	tracer, err := trace.New(trace.Config{Level: level, OutputPath: output})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = tracer.Flush()
		_ = tracer.Close()
	}
	return tracer, cleanup, nil
}

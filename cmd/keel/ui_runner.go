package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"keel/internal/driver"
	"keel/internal/source"
	"keel/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

type verifyOutcome struct {
	fileSet *source.FileSet
	results []driver.FileResult
	err     error
}

// verifyDir runs the directory pipeline, optionally rendering a live
// progress display while the workers grind through the files.
func verifyDir(cmd *cobra.Command, dir string, opts driver.Options, useTUI bool) (*source.FileSet, []driver.FileResult, error) {
	if !useTUI {
		return driver.VerifyDir(cmd.Context(), dir, opts)
	}

	files, err := driver.ListKirFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return driver.VerifyDir(cmd.Context(), dir, opts)
	}
	rels := make([]string, len(files))
	for i, f := range files {
		if rel, relErr := filepath.Rel(dir, f); relErr == nil {
			rels[i] = filepath.ToSlash(rel)
		} else {
			rels[i] = f
		}
	}

	sink := ui.NewChannelSink()
	opts.Progress = sink
	outcomeCh := make(chan verifyOutcome, 1)
	go func() {
		fs, results, runErr := driver.VerifyDir(cmd.Context(), dir, opts)
		outcomeCh <- verifyOutcome{fileSet: fs, results: results, err: runErr}
		sink.Close()
	}()

	model := ui.NewProgressModel(fmt.Sprintf("keel verify %s", dir), rels, sink.Events())
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}

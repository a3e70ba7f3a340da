package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"keel/internal/diag"
	"keel/internal/diagfmt"
	"keel/internal/driver"
	"keel/internal/project"
	"keel/internal/source"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [flags] <file.kir|directory>",
	Short: "Verify ownership in textual IR",
	Long:  `Parse, validate, and ownership-verify a .kir file or every *.kir file under a directory`,
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	verifyCmd.Flags().Int("jobs", 0, "max parallel workers for directory verification (0=auto)")
	verifyCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	verifyCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	verifyCmd.Flags().Bool("no-cache", false, "disable the on-disk result cache")
	verifyCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, short, or json)", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiMode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	// Manifest settings fill in whatever the flags left at their defaults.
	startDir := path
	if !st.IsDir() {
		startDir = filepath.Dir(path)
	}
	manifest, manifestPath, haveManifest, err := project.LoadNearest(startDir)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", manifestPath, err)
	}
	if haveManifest {
		if jobs == 0 {
			jobs = manifest.Verify.Jobs
		}
		if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && manifest.Verify.MaxDiagnostics > 0 {
			maxDiagnostics = manifest.Verify.MaxDiagnostics
		}
	}

	var cache *driver.Cache
	if !noCache && (!haveManifest || manifest.Verify.Cache) {
		cache, err = driver.OpenCache("keel")
		if err != nil {
			// Run uncached rather than failing the verification.
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
			cache = nil
		}
	}

	tracer, traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer traceCleanup()

	opts := driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Cache:          cache,
		Timings:        showTimings,
		Tracer:         tracer,
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	var (
		fileSet *source.FileSet
		results []driver.FileResult
	)
	if st.IsDir() {
		useTUI := format == "pretty" && !quiet && shouldUseTUI(uiMode)
		fileSet, results, err = verifyDir(cmd, path, opts, useTUI)
	} else {
		fileSet = source.NewFileSetWithBase(filepath.Dir(path))
		var res driver.FileResult
		res, err = driver.VerifyFile(cmd.Context(), fileSet, path, opts)
		results = []driver.FileResult{res}
	}
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	merged := driver.MergeBags(results, maxDiagnostics)

	switch format {
	case "short":
		diagfmt.Short(os.Stdout, merged, fileSet, withNotes)
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}
		if err := diagfmt.WriteJSON(os.Stdout, merged, fileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to encode diagnostics: %w", err)
		}
	default:
		prettyOpts := diagfmt.PrettyOpts{
			Color:     useColor,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		}
		diagfmt.Pretty(os.Stdout, merged, fileSet, prettyOpts)
		if !quiet {
			printVerifySummary(os.Stdout, results, merged)
		}
	}

	if merged.HasErrors() {
		// Diagnostics already went to stdout; suppress cobra's noise.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

func printVerifySummary(w *os.File, results []driver.FileResult, merged *diag.Bag) {
	failed := 0
	cached := 0
	for _, r := range results {
		if r.Bag != nil && r.Bag.HasErrors() {
			failed++
		}
		if r.FromCache {
			cached++
		}
	}
	fmt.Fprintf(w, "%d file(s) verified, %d failed", len(results), failed)
	if cached > 0 {
		fmt.Fprintf(w, ", %d from cache", cached)
	}
	if merged.Len() > 0 {
		fmt.Fprintf(w, ", %d diagnostic(s)", merged.Len())
	}
	fmt.Fprintln(w)
}

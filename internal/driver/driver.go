// Package driver runs the parse/validate/verify pipeline over files and
// directories, with an optional result cache and progress reporting.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"keel/internal/diag"
	"keel/internal/irtext"
	"keel/internal/observ"
	"keel/internal/ossa"
	"keel/internal/source"
	"keel/internal/trace"
	"keel/internal/verify"
)

// Options configures a verification run. The zero value is usable.
type Options struct {
	// Jobs bounds per-file parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each file's diag.Bag.
	MaxDiagnostics int
	// Cache replays previous results for unchanged files when non-nil.
	Cache *Cache
	// Timings records per-file phase durations when true.
	Timings bool
	// Progress receives per-file lifecycle events; may be nil.
	Progress ProgressSink
	// Tracer receives pipeline trace events; may be nil.
	Tracer trace.Tracer
}

const defaultMaxDiagnostics = 100

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return defaultMaxDiagnostics
}

func (o *Options) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// FileResult is the outcome of one file's pipeline.
type FileResult struct {
	Path      string
	FileID    source.FileID
	Module    *ossa.Module
	Bag       *diag.Bag
	FromCache bool
	Timing    *observ.Report
}

// VerifyFile loads, parses, validates, and verifies one file.
func VerifyFile(ctx context.Context, fileSet *source.FileSet, path string, opts Options) (FileResult, error) {
	fileID, err := fileSet.Load(path)
	if err != nil {
		bag := diag.NewBag(opts.maxDiagnostics())
		bag.Add(diag.NewError(diag.IOLoadFile, source.Span{}, "failed to load file: "+err.Error()))
		return FileResult{Path: path, Bag: bag}, nil
	}
	return runPipeline(ctx, fileSet, fileID, path, &opts)
}

// VerifyDir lists *.kir files under dir deterministically and runs the
// pipeline over them in parallel. The merged bag is sorted; a non-nil
// error means an internal failure, not a verification finding.
func VerifyDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	files, err := ListKirFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	run := trace.Begin(tracer, trace.ScopeRun, "verify:"+dir, 0)
	defer run.End(fmt.Sprintf("%d files", len(files)))
	ctx = trace.WithSpan(ctx, run.ID())

	// Load up front: FileSet mutation is not concurrency-safe, the
	// per-file pipelines only read.
	fileIDs := make([]source.FileID, len(files))
	loadErrs := make([]error, len(files))
	for i, path := range files {
		fileIDs[i], loadErrs[i] = fileSet.Load(path)
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErrs[i] != nil {
				bag := diag.NewBag(opts.maxDiagnostics())
				bag.Add(diag.NewError(diag.IOLoadFile, source.Span{},
					"failed to load file: "+loadErrs[i].Error()))
				results[i] = FileResult{Path: path, Bag: bag}
				return nil
			}
			res, err := runPipeline(gctx, fileSet, fileIDs[i], path, &opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// MergeBags folds per-file diagnostics into one sorted, deduplicated bag.
func MergeBags(results []FileResult, maxDiagnostics int) *diag.Bag {
	out := diag.NewBag(maxDiagnostics)
	for _, r := range results {
		if r.Bag != nil {
			out.Merge(r.Bag)
		}
	}
	out.Dedup()
	out.Sort()
	return out
}

func runPipeline(ctx context.Context, fileSet *source.FileSet, fileID source.FileID, path string, opts *Options) (FileResult, error) {
	file := fileSet.Get(fileID)
	rel := file.RelPath(fileSet.BaseDir())
	emitProgress(opts.Progress, ProgressEvent{Path: rel, Stage: StageParse, Status: StatusStart})

	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+rel, trace.SpanFromContext(ctx))
	defer span.End("")

	if opts.Cache != nil {
		if bag, hit := opts.Cache.Lookup(file, opts.maxDiagnostics()); hit {
			span.Point("cache.hit", "")
			emitProgress(opts.Progress, ProgressEvent{Path: rel, Stage: StageVerify, Status: statusFor(bag)})
			return FileResult{Path: path, FileID: fileID, Bag: bag, FromCache: true}, nil
		}
		span.Point("cache.miss", "")
	}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}

	bag := diag.NewBag(opts.maxDiagnostics())
	rep := diag.BagReporter{Bag: bag}
	mod := ossa.NewModule()

	phase := beginPhase(timer, "parse")
	parsedOK := irtext.ParseFile(mod, file, rep)
	endPhase(timer, phase, fmt.Sprintf("%d funcs", len(mod.Funcs)))

	if parsedOK {
		emitProgress(opts.Progress, ProgressEvent{Path: rel, Stage: StageValidate, Status: StatusStart})
		phase = beginPhase(timer, "validate")
		validOK := true
		for _, fn := range mod.Funcs {
			if err := ossa.Validate(mod, fn); err != nil {
				validOK = false
				name := mod.Strings.MustLookup(fn.Name)
				bag.Add(diag.NewError(diag.ValInfo, fn.Span,
					fmt.Sprintf("@%s is structurally invalid: %v", name, err)))
			}
		}
		endPhase(timer, phase, "")

		if validOK {
			emitProgress(opts.Progress, ProgressEvent{Path: rel, Stage: StageVerify, Status: StatusStart})
			phase = beginPhase(timer, "verify")
			if err := verify.Module(mod, rep); err != nil {
				endPhase(timer, phase, "fatal")
				span.Point("verify.fatal", err.Error())
				return FileResult{}, fmt.Errorf("%s: %w", rel, err)
			}
			endPhase(timer, phase, "")
		}
	}

	if opts.Cache != nil {
		opts.Cache.Store(file, bag)
	}

	res := FileResult{Path: path, FileID: fileID, Module: mod, Bag: bag}
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(bag, rel, report)
	}
	emitProgress(opts.Progress, ProgressEvent{Path: rel, Stage: StageVerify, Status: statusFor(bag)})
	return res, nil
}

func statusFor(bag *diag.Bag) ProgressStatus {
	if bag.HasErrors() {
		return StatusFailed
	}
	return StatusOK
}

func beginPhase(t *observ.Timer, name string) int {
	if t == nil {
		return -1
	}
	return t.Begin(name)
}

func endPhase(t *observ.Timer, idx int, note string) {
	if t != nil {
		t.End(idx, note)
	}
}

// ListKirFiles returns all *.kir files under dir, sorted for a
// deterministic run order.
func ListKirFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".kir") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"keel/internal/diag"
	"keel/internal/source"
)

const cleanProgram = `class Obj

fn @dup : $(guaranteed Obj) -> owned Obj {
bb0(%0: guaranteed Obj):
  %1 = begin_borrow %0 : Obj
  %2 = copy_value %1 : Obj
  end_borrow %1
  return %2
}
`

// destroy_value consumes, but the argument is only guaranteed.
const illegalProgram = `class Obj

fn @leak : $(guaranteed Obj) -> () {
bb0(%0: guaranteed Obj):
  destroy_value %0
  return
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestVerifyFileCleanProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.kir", cleanProgram)

	fs := source.NewFileSetWithBase(dir)
	res, err := VerifyFile(context.Background(), fs, path, Options{})
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if res.Module == nil || len(res.Module.Funcs) != 1 {
		t.Fatalf("expected one parsed function")
	}
	if res.FromCache {
		t.Fatalf("no cache configured, result cannot be cached")
	}
}

func TestVerifyFileReportsOwnershipErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leak.kir", illegalProgram)

	fs := source.NewFileSetWithBase(dir)
	res, err := VerifyFile(context.Background(), fs, path, Options{})
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("expected ownership diagnostics")
	}
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.VerIllegalOperand {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %v, got %v", diag.VerIllegalOperand, res.Bag.Items())
	}
}

func TestVerifyFileParseErrorsStopPipeline(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.kir", "fn @broken : $() -> () {\nbb0:\n  frobnicate\n}\n")

	fs := source.NewFileSetWithBase(dir)
	res, err := VerifyFile(context.Background(), fs, path, Options{})
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("expected parse diagnostics")
	}
	for _, d := range res.Bag.Items() {
		if d.Code >= 3000 && d.Code < 4000 {
			t.Fatalf("verification must not run after parse failure, got %v", d.Code)
		}
	}
}

func TestVerifyFileMissingFile(t *testing.T) {
	dir := t.TempDir()
	fs := source.NewFileSetWithBase(dir)
	res, err := VerifyFile(context.Background(), fs, filepath.Join(dir, "absent.kir"), Options{})
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.IOLoadFile {
		t.Fatalf("expected a single load diagnostic, got %v", res.Bag.Items())
	}
}

func TestVerifyDirWalksNestedDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.kir", cleanProgram)
	writeFile(t, dir, filepath.Join("nested", "b.kir"), illegalProgram)
	writeFile(t, dir, "notes.txt", "not ir")

	fileSet, results, err := VerifyDir(context.Background(), dir, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("VerifyDir: %v", err)
	}
	if fileSet == nil {
		t.Fatalf("expected fileset")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Deterministic order regardless of worker scheduling.
	if filepath.Base(results[0].Path) != "a.kir" || filepath.Base(results[1].Path) != "b.kir" {
		t.Fatalf("unexpected order: %q, %q", results[0].Path, results[1].Path)
	}
	if results[0].Bag.HasErrors() {
		t.Errorf("a.kir should verify clean: %v", results[0].Bag.Items())
	}
	if !results[1].Bag.HasErrors() {
		t.Errorf("b.kir should fail verification")
	}

	merged := MergeBags(results, 100)
	if !merged.HasErrors() {
		t.Errorf("merged bag should carry b.kir's errors")
	}
}

func TestVerifyDirEmpty(t *testing.T) {
	dir := t.TempDir()
	_, results, err := VerifyDir(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("VerifyDir: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestVerifyFileTimings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.kir", cleanProgram)

	fs := source.NewFileSetWithBase(dir)
	res, err := VerifyFile(context.Background(), fs, path, Options{Timings: true})
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if res.Timing == nil {
		t.Fatalf("expected timing report")
	}
	names := make([]string, 0, len(res.Timing.Phases))
	for _, p := range res.Timing.Phases {
		names = append(names, p.Name)
	}
	want := []string{"parse", "validate", "verify"}
	if len(names) != len(want) {
		t.Fatalf("phases = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("phases = %v, want %v", names, want)
		}
	}

	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.ObsTimings && d.Severity == diag.SevInfo {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an %v info diagnostic in the bag", diag.ObsTimings)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (s *recordingSink) Publish(ev ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestProgressEvents(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.kir", cleanProgram)

	sink := &recordingSink{}
	fs := source.NewFileSetWithBase(dir)
	if _, err := VerifyFile(context.Background(), fs, path, Options{Progress: sink}); err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}

	if len(sink.events) == 0 {
		t.Fatalf("expected progress events")
	}
	first, last := sink.events[0], sink.events[len(sink.events)-1]
	if first.Stage != StageParse || first.Status != StatusStart {
		t.Errorf("first event = %v/%v, want parse/start", first.Stage, first.Status)
	}
	if last.Stage != StageVerify || last.Status != StatusOK {
		t.Errorf("last event = %v/%v, want verify/ok", last.Stage, last.Status)
	}
}

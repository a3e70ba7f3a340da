package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"keel/internal/diag"
	"keel/internal/source"
)

var (
	errColor   = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan)
	caretColor = color.New(color.FgGreen, color.Bold)
)

// Pretty renders each diagnostic as
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline and, when enabled,
// the attached notes. Expects the bag to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, &d, fs, &opts)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts *PrettyOpts) {
	sev := severityWord(d.Severity)
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
	}

	if d.Primary == (source.Span{}) {
		fmt.Fprintf(w, "%s %s: %s\n", sev, d.Code.ID(), d.Message)
	} else {
		start, _ := fs.Resolve(d.Primary)
		path := formatPath(fs, d.Primary.File, opts.PathMode)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, d.Code.ID(), d.Message)
		writeExcerpt(w, fs, d.Primary, opts)
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			if n.Span == (source.Span{}) {
				fmt.Fprintf(w, "  note: %s\n", n.Msg)
				continue
			}
			nStart, _ := fs.Resolve(n.Span)
			nPath := formatPath(fs, n.Span.File, opts.PathMode)
			fmt.Fprintf(w, "  note: %s:%d:%d: %s\n", nPath, nStart.Line, nStart.Col, n.Msg)
		}
	}
}

func writeExcerpt(w io.Writer, fs *source.FileSet, span source.Span, opts *PrettyOpts) {
	file := fs.Get(span.File)
	start, end := fs.Resolve(span)

	first := start.Line
	if ctx := uint32(opts.Context); ctx > 0 && first > ctx {
		first -= ctx
	} else if ctx > 0 {
		first = 1
	}

	for line := first; line <= start.Line; line++ {
		text := file.GetLine(line)
		fmt.Fprintf(w, "  %4d | %s\n", line, expandTabs(text))
		if line != start.Line {
			continue
		}

		width := uint32(1)
		if end.Line == start.Line && end.Col > start.Col {
			width = end.Col - start.Col
		}
		underline := "^" + strings.Repeat("~", int(width)-1)
		if opts.Color {
			underline = caretColor.Sprint(underline)
		}
		pad := caretPadding(text, start.Col)
		fmt.Fprintf(w, "       | %s%s\n", pad, underline)
	}
}

// caretPadding mirrors expandTabs so the underline stays aligned when
// the excerpt contains tabs before the span.
func caretPadding(line string, col uint32) string {
	var b strings.Builder
	for i, r := range line {
		if uint32(i) >= col-1 {
			break
		}
		if r == '\t' {
			b.WriteString("    ")
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", "    ")
}

// Short renders one line per diagnostic in the golden-file format.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	out := diag.FormatGolden(bag.Items(), fs, includeNotes)
	if out == "" {
		return
	}
	_, _ = io.WriteString(w, out)
	_, _ = io.WriteString(w, "\n")
}

func severityWord(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

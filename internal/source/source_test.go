package source

import (
	"testing"
)

func TestInternerDedup(t *testing.T) {
	in := NewInterner()
	a := in.Intern("copy_value")
	b := in.Intern("copy_value")
	if a != b {
		t.Fatalf("same string interned twice: %d vs %d", a, b)
	}
	if got := in.MustLookup(a); got != "copy_value" {
		t.Fatalf("lookup = %q", got)
	}
	if in.Intern("") != NoStringID {
		t.Fatal("empty string must map to NoStringID")
	}
}

func TestInternerInvalidLookup(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Fatal("lookup of unknown ID must fail")
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.kir", []byte("fn @f\nbb0:\n  return\n"))

	tests := []struct {
		name  string
		span  Span
		line  uint32
		col   uint32
	}{
		{"first line", Span{File: id, Start: 0, End: 2}, 1, 1},
		{"second line", Span{File: id, Start: 6, End: 9}, 2, 1},
		{"third line indented", Span{File: id, Start: 13, End: 19}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(tt.span)
			if start.Line != tt.line || start.Col != tt.col {
				t.Errorf("Resolve(%v) = %d:%d, want %d:%d", tt.span, start.Line, start.Col, tt.line, tt.col)
			}
		})
	}
}

func TestFileSetNormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("crlf.kir", []byte("a\nb\nc"), 0)
	f := fs.Get(id)
	if got := f.GetLine(2); got != "b" {
		t.Fatalf("GetLine(2) = %q, want %q", got, "b")
	}
	if got := f.GetLine(9); got != "" {
		t.Fatalf("GetLine out of range = %q, want empty", got)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed {
		t.Fatal("expected change")
	}
	if string(out) != "a\nb\rc" {
		t.Fatalf("normalizeCRLF = %q", out)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	c := a.Cover(b)
	if c.Start != 5 || c.End != 20 {
		t.Fatalf("Cover = %v", c)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file Cover must be identity, got %v", got)
	}
}

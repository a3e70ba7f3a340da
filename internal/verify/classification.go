package verify

import (
	"keel/internal/ossa"
)

// Verdict separates the two failure channels a classification can produce.
type Verdict uint8

const (
	// VerdictLegal carries the map of acceptable ownership kinds.
	VerdictLegal Verdict = iota
	// VerdictIllegal means no ownership kind is legal for the use: a
	// verification failure reported as a diagnostic, never an abort.
	VerdictIllegal
	// VerdictFatal means the classifier was handed malformed IR (a kind
	// impossible in well-formed ownership-SSA, an un-lowered builtin, an
	// out-of-range operand). It aborts the current run.
	VerdictFatal
)

func (v Verdict) String() string {
	switch v {
	case VerdictLegal:
		return "legal"
	case VerdictIllegal:
		return "illegal"
	case VerdictFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying one operand. The map is
// meaningful only under VerdictLegal; Err only under VerdictFatal.
type Classification struct {
	Verdict Verdict
	Map     ossa.KindMap
	Err     error
}

func legal(m ossa.KindMap) Classification {
	if m.Empty() {
		// An empty map is the "no legal kind" outcome; normalize it so
		// callers test the verdict, not the collection.
		return Classification{Verdict: VerdictIllegal}
	}
	return Classification{Verdict: VerdictLegal, Map: m}
}

func illegal() Classification {
	return Classification{Verdict: VerdictIllegal}
}

func fatal(err error) Classification {
	return Classification{Verdict: VerdictFatal, Err: err}
}

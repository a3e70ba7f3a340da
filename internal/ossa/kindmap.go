package ossa

import (
	"strings"
)

// KindMap is a partial function Ownership -> Constraint: the set of
// ownership kinds a use accepts and whether each is borrowed or consumed.
// The zero value is the empty map, the "no legal kind" sentinel.
// Allocation-free: a presence bitset plus a constraint bitset.
type KindMap struct {
	present uint8 // bit i set: kind i is accepted
	consume uint8 // bit i set: kind i maps to MustBeInvalidated
}

// Entry is one (kind, constraint) pair used by the list constructor.
type Entry struct {
	Kind       Ownership
	Constraint Constraint
}

// CompatibilityMap builds a single-entry map.
func CompatibilityMap(kind Ownership, c Constraint) KindMap {
	var m KindMap
	m.set(kind, c)
	return m
}

// CompatibilityMapFor builds a map from explicit entries. Keys must be
// distinct; a repeated kind keeps the last constraint.
func CompatibilityMapFor(entries ...Entry) KindMap {
	var m KindMap
	for _, e := range entries {
		m.set(e.Kind, e.Constraint)
	}
	return m
}

// AllLive accepts every ownership kind as a borrow.
func AllLive() KindMap {
	var m KindMap
	for k := Ownership(0); k < numOwnership; k++ {
		m.set(k, MustBeLive)
	}
	return m
}

func (m *KindMap) set(kind Ownership, c Constraint) {
	bit := uint8(1) << kind
	m.present |= bit
	if c == MustBeInvalidated {
		m.consume |= bit
	} else {
		m.consume &^= bit
	}
}

// Empty reports whether no kind is legal.
func (m KindMap) Empty() bool {
	return m.present == 0
}

// Lookup returns the constraint for kind when present.
func (m KindMap) Lookup(kind Ownership) (Constraint, bool) {
	bit := uint8(1) << kind
	if m.present&bit == 0 {
		return MustBeLive, false
	}
	if m.consume&bit != 0 {
		return MustBeInvalidated, true
	}
	return MustBeLive, true
}

// Accepts reports whether kind is legal under the map.
func (m KindMap) Accepts(kind Ownership) bool {
	return m.present&(uint8(1)<<kind) != 0
}

// Intersect keeps entries present in both maps with equal constraints.
func (m KindMap) Intersect(other KindMap) KindMap {
	var out KindMap
	for k := Ownership(0); k < numOwnership; k++ {
		c1, ok1 := m.Lookup(k)
		c2, ok2 := other.Lookup(k)
		if ok1 && ok2 && c1 == c2 {
			out.set(k, c1)
		}
	}
	return out
}

func (m KindMap) String() string {
	if m.Empty() {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for k := Ownership(0); k < numOwnership; k++ {
		c, ok := m.Lookup(k)
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k.String())
		b.WriteString(": ")
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}

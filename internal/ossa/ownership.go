package ossa

import "fmt"

// Ownership is the static ownership kind carried by every value.
type Ownership uint8

const (
	// OwnershipNone marks trivial and address values: no lifetime to track.
	// It is the absorbing element of Merge and accepted by every use.
	OwnershipNone Ownership = iota
	// OwnershipUnowned values may be copied but carry no lifetime contract.
	OwnershipUnowned
	// OwnershipOwned values have a unique lifetime ended by exactly one
	// consuming use.
	OwnershipOwned
	// OwnershipGuaranteed values are borrowed: valid for a scope, never
	// consumed by the borrower.
	OwnershipGuaranteed

	numOwnership = 4
)

func (o Ownership) String() string {
	switch o {
	case OwnershipNone:
		return "none"
	case OwnershipUnowned:
		return "unowned"
	case OwnershipOwned:
		return "owned"
	case OwnershipGuaranteed:
		return "guaranteed"
	default:
		return fmt.Sprintf("Ownership(%d)", o)
	}
}

// ParseOwnership is the inverse of String.
func ParseOwnership(s string) (Ownership, bool) {
	switch s {
	case "none":
		return OwnershipNone, true
	case "unowned":
		return OwnershipUnowned, true
	case "owned":
		return OwnershipOwned, true
	case "guaranteed":
		return OwnershipGuaranteed, true
	default:
		return OwnershipNone, false
	}
}

// Constraint tells whether a use borrows or consumes the value.
type Constraint uint8

const (
	// MustBeLive: the value stays valid after the use (a borrow).
	MustBeLive Constraint = iota
	// MustBeInvalidated: the use ends the value's lifetime (a consume).
	MustBeInvalidated
)

func (c Constraint) String() string {
	switch c {
	case MustBeLive:
		return "MustBeLive"
	case MustBeInvalidated:
		return "MustBeInvalidated"
	default:
		return fmt.Sprintf("Constraint(%d)", c)
	}
}

// MergePair folds two ownership kinds. None is absorbing; two distinct
// non-None kinds have no merge.
func MergePair(a, b Ownership) (Ownership, bool) {
	if a == OwnershipNone {
		return b, true
	}
	if b == OwnershipNone || a == b {
		return a, true
	}
	return OwnershipNone, false
}

// Merge folds a list of ownership kinds pairwise. The empty list merges to
// None (the absorbing element), not a failure.
func Merge(kinds []Ownership) (Ownership, bool) {
	out := OwnershipNone
	for _, k := range kinds {
		var ok bool
		out, ok = MergePair(out, k)
		if !ok {
			return OwnershipNone, false
		}
	}
	return out, true
}

// ForwardingConstraint returns the constraint a forwarding use places on an
// operand of the given kind. Not defined for None: forwarding a None value
// constrains nothing, callers use AllLive instead.
func ForwardingConstraint(kind Ownership) Constraint {
	if kind == OwnershipOwned {
		return MustBeInvalidated
	}
	return MustBeLive
}

package verify

import (
	"fmt"

	"keel/internal/ossa"
	"keel/internal/types"
)

// ClassifyOperand decides which ownership kinds are legal for operand idx
// of the given instruction and whether each borrows or consumes. It is a
// pure function of the instruction kind, the operand position, static type
// facts, and (for terminators and calls) sibling operands or destination
// block arguments. isSubobjectProjection marks that the tested value is a
// projected subvalue, which alters a few rules (end_borrow of a projected
// guaranteed phi).
//
// It never panics and never reports through a second channel: verification
// failures come back as VerdictIllegal, malformed IR as VerdictFatal.
func ClassifyOperand(mod *ossa.Module, fn *ossa.Func, instID ossa.InstID, idx int, isSubobjectProjection bool) Classification {
	if int(instID) >= len(fn.Insts) {
		return fatal(fmt.Errorf("instruction %d out of range", instID))
	}
	inst := fn.Inst(instID)
	if idx < 0 || idx >= len(inst.Operands) {
		return fatal(fmt.Errorf("%s: operand index %d out of range (have %d)", inst.Op, idx, len(inst.Operands)))
	}

	switch StrategyOf(inst.Op) {
	case StrategyRejected:
		return fatal(fmt.Errorf("%s cannot appear with classifiable operands in ownership-SSA", inst.Op))
	case StrategyConstant:
		return classifyConstant(inst, idx, isSubobjectProjection)
	case StrategyAcceptAny:
		return legal(ossa.AllLive())
	case StrategyForward:
		return classifyForward(fn, inst)
	case StrategyForwardFixed:
		return classifyForwardFixed(fn, inst, idx)
	case StrategyCallSite:
		return classifyCallSite(mod, fn, inst, idx)
	case StrategyTerminator:
		return classifyTerminator(mod, fn, inst, idx)
	case StrategyReturnLike:
		return classifyReturnLike(mod, fn, inst, idx)
	case StrategyBuiltin:
		return classifyBuiltin(mod, inst)
	default:
		return fatal(fmt.Errorf("no strategy for instruction kind %s", inst.Op))
	}
}

// classifyConstant handles fixed (kind, constraint) rules.
func classifyConstant(inst *ossa.Inst, idx int, isSubobjectProjection bool) Classification {
	switch inst.Op {
	case ossa.OpLoad, ossa.OpLoadBorrow, ossa.OpCopyAddr, ossa.OpDestroyAddr,
		ossa.OpBeginAccess, ossa.OpEndAccess, ossa.OpAddrCast,
		ossa.OpStructElementAddr, ossa.OpTupleElementAddr, ossa.OpSwitchEnumAddr,
		ossa.OpEndApply, ossa.OpAbortApply:
		return legal(ossa.CompatibilityMap(ossa.OwnershipNone, ossa.MustBeLive))
	case ossa.OpStore:
		// Source is consumed, destination is an address.
		if idx == 0 {
			return legal(ossa.CompatibilityMap(ossa.OwnershipOwned, ossa.MustBeInvalidated))
		}
		return legal(ossa.CompatibilityMap(ossa.OwnershipNone, ossa.MustBeLive))
	case ossa.OpDestroyValue, ossa.OpDeallocBox, ossa.OpEndLifetime:
		return legal(ossa.CompatibilityMap(ossa.OwnershipOwned, ossa.MustBeInvalidated))
	case ossa.OpRefElementAddr, ossa.OpProjectBox:
		return legal(ossa.CompatibilityMap(ossa.OwnershipGuaranteed, ossa.MustBeLive))
	case ossa.OpStrongCopyUnowned:
		return legal(ossa.CompatibilityMap(ossa.OwnershipUnowned, ossa.MustBeLive))
	case ossa.OpEndBorrow:
		// Ending a borrow invalidates it, except that a projected subvalue
		// of a guaranteed phi is not the borrow itself.
		if isSubobjectProjection {
			return legal(ossa.CompatibilityMap(ossa.OwnershipGuaranteed, ossa.MustBeLive))
		}
		return legal(ossa.CompatibilityMap(ossa.OwnershipGuaranteed, ossa.MustBeInvalidated))
	default:
		return fatal(fmt.Errorf("%s is not a constant-kind instruction", inst.Op))
	}
}

// classifyForward merges the ownership kinds of every runtime operand.
func classifyForward(fn *ossa.Func, inst *ossa.Inst) Classification {
	kinds := make([]ossa.Ownership, 0, len(inst.Operands))
	for _, op := range inst.Operands {
		if op.TypeDependent() {
			continue
		}
		kinds = append(kinds, fn.Value(op.Value).Ownership)
	}
	merged, ok := ossa.Merge(kinds)
	if !ok {
		return illegal()
	}
	return legal(forwardedMap(merged))
}

// classifyForwardFixed skips the merge: a single-field projection's result
// is decided by the projected operand alone.
func classifyForwardFixed(fn *ossa.Func, inst *ossa.Inst, idx int) Classification {
	kind := fn.Value(inst.Operands[idx].Value).Ownership
	return legal(forwardedMap(kind))
}

func forwardedMap(kind ossa.Ownership) ossa.KindMap {
	if kind == ossa.OwnershipNone {
		return ossa.AllLive()
	}
	return ossa.CompatibilityMap(kind, ossa.ForwardingConstraint(kind))
}

// requiredKindMap builds the map for a convention-required kind, widening
// for enums: a trivial payload case of a non-trivial enum still carries
// None yet must satisfy the convention, so every kind the convention could
// meet at runtime is admitted.
func requiredKindMap(ts *types.Interner, required ossa.Ownership, operandType types.TypeID) ossa.KindMap {
	if ts.IsEnum(operandType) {
		return enumWidenedMap(required)
	}
	return forwardedMap(required)
}

// enumWidenedMap is strategy 5: strictly wider than the non-enum map for
// the same required kind.
func enumWidenedMap(required ossa.Ownership) ossa.KindMap {
	if required == ossa.OwnershipOwned {
		return ossa.CompatibilityMapFor(
			ossa.Entry{Kind: ossa.OwnershipOwned, Constraint: ossa.MustBeInvalidated},
			ossa.Entry{Kind: ossa.OwnershipGuaranteed, Constraint: ossa.MustBeLive},
			ossa.Entry{Kind: ossa.OwnershipUnowned, Constraint: ossa.MustBeLive},
		)
	}
	return ossa.CompatibilityMapFor(
		ossa.Entry{Kind: ossa.OwnershipOwned, Constraint: ossa.MustBeLive},
		ossa.Entry{Kind: ossa.OwnershipGuaranteed, Constraint: ossa.MustBeLive},
		ossa.Entry{Kind: ossa.OwnershipUnowned, Constraint: ossa.MustBeLive},
	)
}

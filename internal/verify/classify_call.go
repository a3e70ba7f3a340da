package verify

import (
	"fmt"

	"keel/internal/ossa"
	"keel/internal/types"
)

// classifyCallSite handles apply/try_apply/begin_apply/partial_apply.
// Operand 0 is the callee, then one operand per indirect result, then the
// arguments matched against the callee's parameter conventions.
func classifyCallSite(mod *ossa.Module, fn *ossa.Func, inst *ossa.Inst, idx int) Classification {
	calleeType := fn.Value(inst.Operands[0].Value).Type
	fi, ok := mod.Types.FnInfo(calleeType)
	if !ok {
		return fatal(fmt.Errorf("%s callee is not a function type", inst.Op))
	}

	if idx == 0 {
		return legal(calleeOperandMap(fi))
	}

	if inst.Op == ossa.OpPartialApply {
		// Captures of a stack closure are only borrowed for the closure's
		// lifetime; heap closures take their captures with them.
		if inst.OnStack {
			return legal(ossa.AllLive())
		}
		capType := fn.Value(inst.Operands[idx].Value).Type
		return legal(requiredKindMap(mod.Types, ossa.OwnershipOwned, capType))
	}

	nIndirect := fi.IndirectResultCount()
	if idx <= nIndirect {
		// Indirect result slots are addresses provided by the caller.
		return legal(ossa.AllLive())
	}

	paramIdx := idx - 1 - nIndirect
	if paramIdx >= len(fi.Params) {
		return fatal(fmt.Errorf("%s operand %d has no matching parameter (callee takes %d)", inst.Op, idx, len(fi.Params)))
	}
	p := fi.Params[paramIdx]
	argType := fn.Value(inst.Operands[idx].Value).Type
	return legal(conventionMap(mod.Types, p.Conv, argType, fi.NoEscape))
}

// calleeOperandMap classifies the callee value itself from the function
// type's callee convention.
func calleeOperandMap(fi *types.FnInfo) ossa.KindMap {
	switch fi.CalleeConv {
	case types.ConvDirectOwned, types.ConvIndirectIn, types.ConvIndirectInConstant:
		return ossa.CompatibilityMap(ossa.OwnershipOwned, ossa.MustBeInvalidated)
	case types.ConvDirectGuaranteed, types.ConvIndirectInGuaranteed:
		if fi.NoEscape {
			return ossa.AllLive()
		}
		return ossa.CompatibilityMap(ossa.OwnershipGuaranteed, ossa.MustBeLive)
	default: // ConvDirectUnowned and the inout conventions
		return ossa.AllLive()
	}
}

// conventionMap is the shared argument table for calls and yields. Enum
// arguments are widened per strategy 5.
func conventionMap(ts *types.Interner, conv types.ParamConvention, argType types.TypeID, noEscape bool) ossa.KindMap {
	switch conv {
	case types.ConvIndirectIn, types.ConvIndirectInConstant, types.ConvDirectOwned:
		// in_constant is still an in convention: the callee takes the
		// value, it just may not mutate it.
		return requiredKindMap(ts, ossa.OwnershipOwned, argType)
	case types.ConvIndirectInGuaranteed, types.ConvDirectGuaranteed:
		if noEscape {
			return ossa.AllLive()
		}
		return requiredKindMap(ts, ossa.OwnershipGuaranteed, argType)
	case types.ConvDirectUnowned:
		return ossa.AllLive()
	case types.ConvIndirectInout, types.ConvIndirectInoutAliasable:
		// Address arguments.
		return ossa.CompatibilityMap(ossa.OwnershipNone, ossa.MustBeLive)
	default:
		return ossa.AllLive()
	}
}

package verify

import (
	"fmt"

	"keel/internal/ossa"
	"keel/internal/types"
)

// classifyReturnLike handles return/throw/yield against the enclosing
// function's declared result, error, and yield conventions.
func classifyReturnLike(mod *ossa.Module, fn *ossa.Func, inst *ossa.Inst, idx int) Classification {
	switch inst.Op {
	case ossa.OpReturn:
		return classifyReturn(mod, fn)
	case ossa.OpThrow:
		// The error convention does not change what throw does to its
		// operand: the thrown value is always handed off.
		return legal(ossa.CompatibilityMap(ossa.OwnershipOwned, ossa.MustBeInvalidated))
	case ossa.OpYield:
		return classifyYield(mod, fn, inst, idx)
	default:
		return fatal(fmt.Errorf("%s is not a return-like terminator", inst.Op))
	}
}

// classifyReturn merges all declared direct-result kinds. A function whose
// direct results are all trivial constrains nothing.
func classifyReturn(mod *ossa.Module, fn *ossa.Func) Classification {
	fi, ok := mod.FnInfo(fn)
	if !ok {
		return fatal(fmt.Errorf("return in function without a function type"))
	}
	direct := fi.DirectResults()
	kinds := make([]ossa.Ownership, 0, len(direct))
	for _, r := range direct {
		kinds = append(kinds, resultKind(mod.Types, r))
	}
	merged, ok2 := ossa.Merge(kinds)
	if !ok2 {
		return illegal()
	}
	if merged == ossa.OwnershipNone {
		return legal(ossa.AllLive())
	}
	if len(direct) == 1 && mod.Types.IsEnum(direct[0].Type) {
		return legal(enumWidenedMap(merged))
	}
	return legal(ossa.CompatibilityMap(merged, ossa.ForwardingConstraint(merged)))
}

func resultKind(ts *types.Interner, r types.Result) ossa.Ownership {
	if ts.IsTrivial(r.Type) {
		return ossa.OwnershipNone
	}
	if r.Conv == types.ResultUnowned {
		return ossa.OwnershipUnowned
	}
	return ossa.OwnershipOwned
}

// classifyYield looks up the matching yield declaration and reuses the
// call-argument convention table. The indirect arms stay in the table on
// purpose: ownership verification runs before address lowering here, so
// indirect yields are live inputs, not dead code.
func classifyYield(mod *ossa.Module, fn *ossa.Func, inst *ossa.Inst, idx int) Classification {
	fi, ok := mod.FnInfo(fn)
	if !ok {
		return fatal(fmt.Errorf("yield in function without a function type"))
	}
	if idx >= len(fi.Yields) {
		return fatal(fmt.Errorf("yield operand %d has no matching yield declaration (have %d)", idx, len(fi.Yields)))
	}
	y := fi.Yields[idx]
	opType := fn.Value(inst.Operands[idx].Value).Type
	return legal(conventionMap(mod.Types, y.Conv, opType, false))
}

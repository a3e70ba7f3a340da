package verify

import (
	"fmt"

	"keel/internal/ossa"
)

// classifyTerminator matches an operand against the ownership kind already
// declared on the corresponding destination-block argument.
func classifyTerminator(mod *ossa.Module, fn *ossa.Func, inst *ossa.Inst, idx int) Classification {
	switch inst.Op {
	case ossa.OpBranch:
		if len(inst.Succs) < 1 {
			return fatal(fmt.Errorf("br has no successor"))
		}
		return classifyBranchArg(mod, fn, inst.Succs[0], idx)
	case ossa.OpCondBranch:
		if len(inst.Succs) < 2 {
			return fatal(fmt.Errorf("cond_br has %d successors, need 2", len(inst.Succs)))
		}
		return classifyCondBranch(mod, fn, inst, idx)
	case ossa.OpSwitchEnum:
		return classifySwitchEnum(mod, fn, inst)
	case ossa.OpCheckedCastBranch:
		return classifyCheckedCastBranch(mod, fn, inst)
	default:
		return fatal(fmt.Errorf("%s is not a successor-matching terminator", inst.Op))
	}
}

// classifyBranchArg classifies one value passed to a destination argument.
func classifyBranchArg(mod *ossa.Module, fn *ossa.Func, dest ossa.BlockID, argIdx int) Classification {
	if int(dest) >= len(fn.Blocks) {
		return fatal(fmt.Errorf("branch destination bb%d out of range", dest))
	}
	block := fn.Block(dest)
	if argIdx >= len(block.Args) {
		return fatal(fmt.Errorf("branch argument %d exceeds bb%d's %d arguments", argIdx, dest, len(block.Args)))
	}
	arg := fn.Value(block.Args[argIdx])
	return legal(requiredKindMap(mod.Types, arg.Ownership, arg.Type))
}

// classifyCondBranch splits operands into condition/true-args/false-args
// and applies the branch rule independently per side: no cross-branch
// merge, unlike switch_enum.
func classifyCondBranch(mod *ossa.Module, fn *ossa.Func, inst *ossa.Inst, idx int) Classification {
	if idx == 0 {
		// The condition is trivial.
		return legal(ossa.AllLive())
	}
	trueEnd := 1 + int(inst.NumTrueArgs)
	if idx < trueEnd {
		return classifyBranchArg(mod, fn, inst.Succs[0], idx-1)
	}
	return classifyBranchArg(mod, fn, inst.Succs[1], idx-trueEnd)
}

// classifySwitchEnum merges the payload-argument kind across every
// non-default case. A case without a payload argument contributes None,
// not a conflict.
func classifySwitchEnum(mod *ossa.Module, fn *ossa.Func, inst *ossa.Inst) Classification {
	kinds := make([]ossa.Ownership, 0, len(inst.Succs))
	for i, succ := range inst.Succs {
		if inst.SuccCases[i] == ossa.SwitchDefault {
			continue
		}
		block := fn.Block(succ)
		if len(block.Args) == 0 {
			kinds = append(kinds, ossa.OwnershipNone)
			continue
		}
		kinds = append(kinds, fn.Value(block.Args[0]).Ownership)
	}
	merged, ok := ossa.Merge(kinds)
	if !ok {
		return illegal()
	}
	if merged == ossa.OwnershipNone {
		return legal(ossa.AllLive())
	}
	// The scrutinee is an enum by construction, so the widened map applies.
	return legal(enumWidenedMap(merged))
}

// classifyCheckedCastBranch folds the per-successor maps by intersection:
// a kind rejected by either successor collapses out, and an empty
// intersection is a verification failure.
func classifyCheckedCastBranch(mod *ossa.Module, fn *ossa.Func, inst *ossa.Inst) Classification {
	running := ossa.AllLive()
	allNone := true
	for _, succ := range inst.Succs {
		block := fn.Block(succ)
		if len(block.Args) != 1 {
			return fatal(fmt.Errorf("checked_cast_br destination bb%d must declare exactly 1 argument", succ))
		}
		arg := fn.Value(block.Args[0])
		if arg.Ownership != ossa.OwnershipNone {
			allNone = false
		}
		running = running.Intersect(requiredKindMap(mod.Types, arg.Ownership, arg.Type))
	}
	if allNone {
		return legal(ossa.AllLive())
	}
	if running.Empty() {
		return illegal()
	}
	return legal(running)
}

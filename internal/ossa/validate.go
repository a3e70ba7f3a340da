package ossa

import (
	"errors"
	"fmt"
)

// Validate checks a function's structural invariants before ownership
// verification: termination, index ranges, branch argument arity, and the
// None rule for trivial and address values. All findings are joined; nil
// means the function is structurally sound.
func Validate(mod *Module, fn *Func) error {
	var errs []error
	bad := func(bb BlockID, format string, args ...any) {
		errs = append(errs, fmt.Errorf("bb%d: %s", bb, fmt.Sprintf(format, args...)))
	}

	if len(fn.Blocks) == 0 {
		return errors.New("function has no blocks")
	}
	if int(fn.Entry) >= len(fn.Blocks) {
		return fmt.Errorf("entry block bb%d out of range", fn.Entry)
	}

	if fi, ok := mod.FnInfo(fn); ok {
		entry := &fn.Blocks[fn.Entry]
		if len(entry.Args) != len(fi.Params) {
			bad(fn.Entry, "entry block declares %d arguments, function type has %d parameters",
				len(entry.Args), len(fi.Params))
		}
	}

	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		bb := BlockID(bi) // #nosec G115 -- arena sizes fit uint32 by construction

		if len(block.Instrs) == 0 {
			bad(bb, "block has no instructions")
			continue
		}
		for ii, instID := range block.Instrs {
			if int(instID) >= len(fn.Insts) {
				bad(bb, "instruction index %d out of range", instID)
				continue
			}
			inst := &fn.Insts[instID]
			last := ii == len(block.Instrs)-1
			if last && !inst.Op.IsTerminator() {
				bad(bb, "block does not end in a terminator (ends with %s)", inst.Op)
			}
			if !last && inst.Op.IsTerminator() {
				bad(bb, "terminator %s in the middle of the block", inst.Op)
			}
			validateInst(mod, fn, bb, inst, bad)
		}
	}

	for vi := range fn.Values {
		v := &fn.Values[vi]
		if v.Ownership != OwnershipNone {
			if mod.Types.IsAddress(v.Type) {
				errs = append(errs, fmt.Errorf("v%d: address value carries %s ownership", vi, v.Ownership))
			} else if mod.Types.IsTrivial(v.Type) {
				errs = append(errs, fmt.Errorf("v%d: trivial value carries %s ownership", vi, v.Ownership))
			}
		}
	}

	return errors.Join(errs...)
}

func validateInst(mod *Module, fn *Func, bb BlockID, inst *Inst, bad func(BlockID, string, ...any)) {
	for oi, op := range inst.Operands {
		if int(op.Value) >= len(fn.Values) {
			bad(bb, "%s operand %d references value %d out of range", inst.Op, oi, op.Value)
		}
	}
	for _, r := range inst.Results {
		if int(r) >= len(fn.Values) {
			bad(bb, "%s result value %d out of range", inst.Op, r)
		}
	}
	for _, succ := range inst.Succs {
		if int(succ) >= len(fn.Blocks) {
			bad(bb, "%s successor bb%d does not exist", inst.Op, succ)
			return
		}
	}

	switch inst.Op {
	case OpBranch:
		dest := &fn.Blocks[inst.Succs[0]]
		if len(inst.Operands) != len(dest.Args) {
			bad(bb, "br passes %d values, bb%d declares %d arguments",
				len(inst.Operands), dest.ID, len(dest.Args))
		}
	case OpCondBranch:
		if len(inst.Succs) != 2 {
			bad(bb, "cond_br needs 2 successors, has %d", len(inst.Succs))
			return
		}
		nTrue := int(inst.NumTrueArgs)
		nFalse := len(inst.Operands) - 1 - nTrue
		if nFalse < 0 {
			bad(bb, "cond_br true-argument count %d exceeds operand list", nTrue)
			return
		}
		trueDest := &fn.Blocks[inst.Succs[0]]
		falseDest := &fn.Blocks[inst.Succs[1]]
		if nTrue != len(trueDest.Args) {
			bad(bb, "cond_br passes %d values, bb%d declares %d arguments", nTrue, trueDest.ID, len(trueDest.Args))
		}
		if nFalse != len(falseDest.Args) {
			bad(bb, "cond_br passes %d values, bb%d declares %d arguments", nFalse, falseDest.ID, len(falseDest.Args))
		}
	case OpSwitchEnum:
		if len(inst.SuccCases) != len(inst.Succs) {
			bad(bb, "switch_enum case list does not match successor list")
			return
		}
		for i, succ := range inst.Succs {
			dest := &fn.Blocks[succ]
			if len(dest.Args) > 1 {
				bad(bb, "switch_enum destination bb%d declares %d arguments, at most 1 allowed", dest.ID, len(dest.Args))
			}
			if inst.SuccCases[i] == SwitchDefault && len(dest.Args) != 0 {
				bad(bb, "switch_enum default destination bb%d must not declare arguments", dest.ID)
			}
		}
	case OpCheckedCastBranch:
		if len(inst.Succs) != 2 {
			bad(bb, "checked_cast_br needs 2 successors, has %d", len(inst.Succs))
			return
		}
		for _, succ := range inst.Succs {
			dest := &fn.Blocks[succ]
			if len(dest.Args) != 1 {
				bad(bb, "checked_cast_br destination bb%d must declare exactly 1 argument", dest.ID)
			}
		}
	}
}

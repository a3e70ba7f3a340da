// Package verify implements ownership verification over ownership-SSA: it
// classifies every operand use of every instruction as a borrow or a
// consume and checks the used value's materialized ownership kind against
// the classification.
package verify

import (
	"fmt"

	"keel/internal/diag"
	"keel/internal/ossa"
)

// Module verifies every function in the module. Verification failures go
// to the reporter; a non-nil error means malformed IR that should have
// been caught by validation, and aborts at the first occurrence.
func Module(mod *ossa.Module, r diag.Reporter) error {
	for _, fn := range mod.Funcs {
		if err := Function(mod, fn, r); err != nil {
			return err
		}
	}
	return nil
}

// Function verifies a single function. Every operand of every instruction
// is classified and checked; type-dependent operands carry no runtime
// data flow and are skipped.
func Function(mod *ossa.Module, fn *ossa.Func, r diag.Reporter) error {
	name, _ := mod.Strings.Lookup(fn.Name)
	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		for _, instID := range block.Instrs {
			inst := fn.Inst(instID)
			if StrategyOf(inst.Op) == StrategyRejected {
				if len(inst.Operands) == 0 {
					continue
				}
				return fmt.Errorf("%s: %s has operands but is not classifiable", name, inst.Op)
			}
			for idx, op := range inst.Operands {
				if op.TypeDependent() {
					continue
				}
				if err := checkOperand(mod, fn, name, instID, idx, r); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkOperand(mod *ossa.Module, fn *ossa.Func, fnName string, instID ossa.InstID, idx int, r diag.Reporter) error {
	inst := fn.Inst(instID)
	val := fn.Value(inst.Operands[idx].Value)
	cls := ClassifyOperand(mod, fn, instID, idx, isSubobjectProjection(fn, val))
	switch cls.Verdict {
	case VerdictFatal:
		return fmt.Errorf("%s: %v", fnName, cls.Err)
	case VerdictIllegal:
		diag.ReportError(r, diag.VerNoLegalKind, inst.Span,
			fmt.Sprintf("no ownership kind is legal for operand %d of %s", idx, inst.Op))
		return nil
	}
	// None values (trivial values, addresses) satisfy every use; the map
	// constrains only values with a lifetime.
	if val.Ownership != ossa.OwnershipNone && !cls.Map.Accepts(val.Ownership) {
		diag.ReportError(r, diag.VerIllegalOperand, inst.Span,
			fmt.Sprintf("operand %d of %s has ownership %s, expected %s",
				idx, inst.Op, val.Ownership, cls.Map))
	}
	return nil
}

// isSubobjectProjection reports whether a value is a projected subvalue of
// a larger aggregate rather than an independently produced value. The
// distinction matters to end_borrow: ending a projection of a guaranteed
// phi borrows rather than invalidates.
func isSubobjectProjection(fn *ossa.Func, val *ossa.Value) bool {
	if val.IsBlockArg() {
		return false
	}
	switch fn.Inst(val.Def).Op {
	case ossa.OpStructExtract, ossa.OpTupleExtract, ossa.OpUncheckedEnumData,
		ossa.OpDestructureStruct, ossa.OpDestructureTuple:
		return true
	default:
		return false
	}
}

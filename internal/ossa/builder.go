package ossa

import (
	"fmt"

	"fortio.org/safecast"

	"keel/internal/source"
	"keel/internal/types"
)

// Builder constructs one function's arenas in program order. Result
// ownership is derived per instruction kind, so callers only supply types;
// block arguments declare their ownership explicitly.
type Builder struct {
	mod *Module
	fn  *Func
}

// NewBuilder starts a function with the given interned name and function
// type. The entry block is not created implicitly.
func NewBuilder(mod *Module, name source.StringID, fnType types.TypeID, span source.Span) *Builder {
	return &Builder{
		mod: mod,
		fn: &Func{
			Name:  name,
			Type:  fnType,
			Span:  span,
			Entry: 0,
		},
	}
}

// Func exposes the function under construction.
func (b *Builder) Func() *Func {
	return b.fn
}

// AddBlock appends an empty block and returns its ID.
func (b *Builder) AddBlock() BlockID {
	id, err := safecast.Conv[uint32](len(b.fn.Blocks))
	if err != nil {
		panic(fmt.Errorf("block arena overflow: %w", err))
	}
	b.fn.Blocks = append(b.fn.Blocks, Block{ID: BlockID(id)})
	return BlockID(id)
}

// AddArg appends a block argument with an explicitly declared ownership.
func (b *Builder) AddArg(bb BlockID, typ types.TypeID, own Ownership) ValueID {
	block := &b.fn.Blocks[bb]
	argIdx, err := safecast.Conv[uint32](len(block.Args))
	if err != nil {
		panic(fmt.Errorf("block argument overflow: %w", err))
	}
	v := b.addValue(Value{
		Type:      typ,
		Ownership: own,
		Def:       NoInstID,
		Block:     bb,
		ArgIndex:  argIdx,
	})
	block.Args = append(block.Args, v)
	return v
}

// Append adds an instruction to bb and allocates one result value per
// resultType, deriving each result's ownership from the instruction kind
// and its operands. It returns the result IDs in order.
func (b *Builder) Append(bb BlockID, inst Inst, resultTypes ...types.TypeID) []ValueID {
	instIdx, err := safecast.Conv[uint32](len(b.fn.Insts))
	if err != nil {
		panic(fmt.Errorf("instruction arena overflow: %w", err))
	}
	instID := InstID(instIdx)

	results := make([]ValueID, 0, len(resultTypes))
	for i, typ := range resultTypes {
		own := b.resultOwnership(&inst, i, typ)
		v := b.addValue(Value{
			Type:      typ,
			Ownership: own,
			Def:       instID,
			Block:     bb,
		})
		results = append(results, v)
	}
	inst.Results = results
	b.fn.Insts = append(b.fn.Insts, inst)
	b.fn.Blocks[bb].Instrs = append(b.fn.Blocks[bb].Instrs, instID)
	return results
}

// Finish attaches the function to the module and returns it.
func (b *Builder) Finish() *Func {
	b.mod.Funcs = append(b.mod.Funcs, b.fn)
	return b.fn
}

func (b *Builder) addValue(v Value) ValueID {
	id, err := safecast.Conv[uint32](len(b.fn.Values))
	if err != nil {
		panic(fmt.Errorf("value arena overflow: %w", err))
	}
	b.fn.Values = append(b.fn.Values, v)
	return ValueID(id)
}

// resultOwnership derives the ownership of result idx. Address and trivial
// results always carry None; everything else follows the kind's convention.
func (b *Builder) resultOwnership(inst *Inst, idx int, typ types.TypeID) Ownership {
	ts := b.mod.Types
	if ts.IsAddress(typ) || ts.IsTrivial(typ) {
		return OwnershipNone
	}

	switch inst.Op {
	case OpLoad, OpCopyValue, OpAllocBox, OpAllocRef, OpStrongCopyUnowned, OpPartialApply:
		return OwnershipOwned
	case OpLoadBorrow, OpBeginBorrow:
		return OwnershipGuaranteed
	case OpBitwiseCast:
		// Reinterpreted bits carry no lifetime contract.
		return OwnershipUnowned
	case OpStruct, OpTuple, OpEnum, OpUpcast, OpRefCast, OpConvertFunction,
		OpDestructureStruct, OpDestructureTuple,
		OpStructExtract, OpTupleExtract, OpUncheckedEnumData:
		return b.forwardedOwnership(inst)
	case OpApply:
		return b.applyResultOwnership(inst, idx)
	case OpBeginApply:
		return b.beginApplyResultOwnership(inst, idx)
	default:
		return OwnershipNone
	}
}

// forwardedOwnership merges the operand kinds. A conflicting merge falls
// back to None here: construction never fails, the verifier reports it.
func (b *Builder) forwardedOwnership(inst *Inst) Ownership {
	kinds := make([]Ownership, 0, len(inst.Operands))
	for _, op := range inst.Operands {
		if op.TypeDependent() {
			continue
		}
		kinds = append(kinds, b.fn.Values[op.Value].Ownership)
	}
	merged, ok := Merge(kinds)
	if !ok {
		return OwnershipNone
	}
	return merged
}

func (b *Builder) applyResultOwnership(inst *Inst, idx int) Ownership {
	fi := b.calleeInfo(inst)
	if fi == nil {
		return OwnershipNone
	}
	direct := fi.DirectResults()
	if idx >= len(direct) {
		return OwnershipNone
	}
	if direct[idx].Conv == types.ResultUnowned {
		return OwnershipUnowned
	}
	return OwnershipOwned
}

func (b *Builder) beginApplyResultOwnership(inst *Inst, idx int) Ownership {
	fi := b.calleeInfo(inst)
	if fi == nil || idx >= len(fi.Yields) {
		// The continuation token past the yields is trivial.
		return OwnershipNone
	}
	switch fi.Yields[idx].Conv {
	case types.ConvDirectOwned, types.ConvIndirectIn:
		return OwnershipOwned
	case types.ConvDirectGuaranteed, types.ConvIndirectInGuaranteed:
		return OwnershipGuaranteed
	default:
		return OwnershipNone
	}
}

func (b *Builder) calleeInfo(inst *Inst) *types.FnInfo {
	if len(inst.Operands) == 0 {
		return nil
	}
	calleeType := b.fn.Values[inst.Operands[0].Value].Type
	fi, ok := b.mod.Types.FnInfo(calleeType)
	if !ok {
		return nil
	}
	return fi
}

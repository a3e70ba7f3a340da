package verify

import (
	"keel/internal/ossa"
)

// Strategy names the classification rule family an instruction kind uses.
// Every OpKind maps to exactly one strategy; the table below is total and
// kept exhaustive by TestStrategyTableTotal.
type Strategy uint8

const (
	StrategyInvalid Strategy = iota
	// StrategyRejected: kinds impossible in well-formed ownership-SSA or
	// without classifiable operands. Reaching one is a fatal internal error.
	StrategyRejected
	// StrategyConstant: a fixed (kind, constraint) independent of context.
	StrategyConstant
	// StrategyAcceptAny: AllLive unconditionally.
	StrategyAcceptAny
	// StrategyForward: merge of the operand set's ownership kinds.
	StrategyForward
	// StrategyForwardFixed: forwarding where a single input decides.
	StrategyForwardFixed
	// StrategyCallSite: convention-driven call argument rules.
	StrategyCallSite
	// StrategyTerminator: matched against destination block arguments.
	StrategyTerminator
	// StrategyReturnLike: return/throw/yield against the enclosing
	// function's declared conventions.
	StrategyReturnLike
	// StrategyBuiltin: secondary dispatch on the builtin identifier.
	StrategyBuiltin
)

var strategyTable = [ossa.NumOpKinds]Strategy{
	ossa.OpInvalid: StrategyRejected,

	ossa.OpIntLiteral:    StrategyRejected,
	ossa.OpFloatLiteral:  StrategyRejected,
	ossa.OpStringLiteral: StrategyRejected,
	ossa.OpFunctionRef:   StrategyRejected,
	ossa.OpGlobalAddr:    StrategyRejected,
	ossa.OpMetatype:      StrategyRejected,
	ossa.OpAllocStack:    StrategyRejected,
	ossa.OpAllocBox:      StrategyRejected,
	ossa.OpAllocRef:      StrategyRejected,
	ossa.OpUnreachable:   StrategyRejected,

	ossa.OpLoad:              StrategyConstant,
	ossa.OpLoadBorrow:        StrategyConstant,
	ossa.OpStore:             StrategyConstant,
	ossa.OpCopyAddr:          StrategyConstant,
	ossa.OpDestroyAddr:       StrategyConstant,
	ossa.OpBeginAccess:       StrategyConstant,
	ossa.OpEndAccess:         StrategyConstant,
	ossa.OpAddrCast:          StrategyConstant,
	ossa.OpStructElementAddr: StrategyConstant,
	ossa.OpTupleElementAddr:  StrategyConstant,
	ossa.OpSwitchEnumAddr:    StrategyConstant,
	ossa.OpEndApply:          StrategyConstant,
	ossa.OpAbortApply:        StrategyConstant,
	ossa.OpDestroyValue:      StrategyConstant,
	ossa.OpDeallocBox:        StrategyConstant,
	ossa.OpEndLifetime:       StrategyConstant,
	ossa.OpRefElementAddr:    StrategyConstant,
	ossa.OpProjectBox:        StrategyConstant,
	ossa.OpStrongCopyUnowned: StrategyConstant,
	ossa.OpEndBorrow:         StrategyConstant,

	ossa.OpDebugValue:  StrategyAcceptAny,
	ossa.OpFixLifetime: StrategyAcceptAny,
	ossa.OpCopyValue:   StrategyAcceptAny,
	ossa.OpBeginBorrow: StrategyAcceptAny,
	ossa.OpClassMethod: StrategyAcceptAny,
	ossa.OpBitwiseCast: StrategyAcceptAny,

	ossa.OpStruct:            StrategyForward,
	ossa.OpTuple:             StrategyForward,
	ossa.OpEnum:              StrategyForward,
	ossa.OpUpcast:            StrategyForward,
	ossa.OpRefCast:           StrategyForward,
	ossa.OpConvertFunction:   StrategyForward,
	ossa.OpDestructureStruct: StrategyForward,
	ossa.OpDestructureTuple:  StrategyForward,

	ossa.OpStructExtract:     StrategyForwardFixed,
	ossa.OpTupleExtract:      StrategyForwardFixed,
	ossa.OpUncheckedEnumData: StrategyForwardFixed,

	ossa.OpApply:        StrategyCallSite,
	ossa.OpTryApply:     StrategyCallSite,
	ossa.OpBeginApply:   StrategyCallSite,
	ossa.OpPartialApply: StrategyCallSite,

	ossa.OpBranch:            StrategyTerminator,
	ossa.OpCondBranch:        StrategyTerminator,
	ossa.OpSwitchEnum:        StrategyTerminator,
	ossa.OpCheckedCastBranch: StrategyTerminator,

	ossa.OpReturn: StrategyReturnLike,
	ossa.OpThrow:  StrategyReturnLike,
	ossa.OpYield:  StrategyReturnLike,

	ossa.OpBuiltin: StrategyBuiltin,
}

// StrategyOf returns the strategy for an instruction kind.
func StrategyOf(op ossa.OpKind) Strategy {
	if op < ossa.NumOpKinds {
		return strategyTable[op]
	}
	return StrategyInvalid
}

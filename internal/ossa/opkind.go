package ossa

import "fmt"

// OpKind enumerates every instruction kind. The set is closed: the
// classifier dispatches over it with a total switch, and a test walks every
// value to keep the dispatch exhaustive.
type OpKind uint8

const (
	OpInvalid OpKind = iota

	// Literal and global constructors. They define values but take no
	// classifiable operands.
	OpIntLiteral
	OpFloatLiteral
	OpStringLiteral
	OpFunctionRef
	OpGlobalAddr
	OpMetatype
	OpAllocStack
	OpAllocBox
	OpAllocRef

	// Memory and address operations.
	OpLoad
	OpLoadBorrow
	OpStore
	OpCopyAddr
	OpDestroyAddr
	OpBeginAccess
	OpEndAccess
	OpAddrCast
	OpStructElementAddr
	OpTupleElementAddr
	OpSwitchEnumAddr

	// Lifetime operations.
	OpCopyValue
	OpDestroyValue
	OpBeginBorrow
	OpEndBorrow
	OpEndLifetime
	OpFixLifetime
	OpDebugValue
	OpDeallocBox
	OpStrongCopyUnowned
	OpClassMethod
	OpBitwiseCast

	// Interior projections out of reference types.
	OpRefElementAddr
	OpProjectBox

	// Aggregate construction, destructuring, and forwarding casts.
	OpStruct
	OpTuple
	OpEnum
	OpUpcast
	OpRefCast
	OpConvertFunction
	OpDestructureStruct
	OpDestructureTuple
	OpStructExtract
	OpTupleExtract
	OpUncheckedEnumData

	// Call sites.
	OpApply
	OpBeginApply
	OpEndApply
	OpAbortApply
	OpPartialApply
	OpBuiltin

	// Terminators.
	OpBranch
	OpCondBranch
	OpSwitchEnum
	OpCheckedCastBranch
	OpTryApply
	OpReturn
	OpThrow
	OpYield
	OpUnreachable

	NumOpKinds
)

var opNames = [NumOpKinds]string{
	OpInvalid:           "invalid",
	OpIntLiteral:        "int_literal",
	OpFloatLiteral:      "float_literal",
	OpStringLiteral:     "string_literal",
	OpFunctionRef:       "function_ref",
	OpGlobalAddr:        "global_addr",
	OpMetatype:          "metatype",
	OpAllocStack:        "alloc_stack",
	OpAllocBox:          "alloc_box",
	OpAllocRef:          "alloc_ref",
	OpLoad:              "load",
	OpLoadBorrow:        "load_borrow",
	OpStore:             "store",
	OpCopyAddr:          "copy_addr",
	OpDestroyAddr:       "destroy_addr",
	OpBeginAccess:       "begin_access",
	OpEndAccess:         "end_access",
	OpAddrCast:          "addr_cast",
	OpStructElementAddr: "struct_element_addr",
	OpTupleElementAddr:  "tuple_element_addr",
	OpSwitchEnumAddr:    "switch_enum_addr",
	OpCopyValue:         "copy_value",
	OpDestroyValue:      "destroy_value",
	OpBeginBorrow:       "begin_borrow",
	OpEndBorrow:         "end_borrow",
	OpEndLifetime:       "end_lifetime",
	OpFixLifetime:       "fix_lifetime",
	OpDebugValue:        "debug_value",
	OpDeallocBox:        "dealloc_box",
	OpStrongCopyUnowned: "strong_copy_unowned",
	OpClassMethod:       "class_method",
	OpBitwiseCast:       "bitwise_cast",
	OpRefElementAddr:    "ref_element_addr",
	OpProjectBox:        "project_box",
	OpStruct:            "struct",
	OpTuple:             "tuple",
	OpEnum:              "enum",
	OpUpcast:            "upcast",
	OpRefCast:           "ref_cast",
	OpConvertFunction:   "convert_function",
	OpDestructureStruct: "destructure_struct",
	OpDestructureTuple:  "destructure_tuple",
	OpStructExtract:     "struct_extract",
	OpTupleExtract:      "tuple_extract",
	OpUncheckedEnumData: "unchecked_enum_data",
	OpApply:             "apply",
	OpBeginApply:        "begin_apply",
	OpEndApply:          "end_apply",
	OpAbortApply:        "abort_apply",
	OpPartialApply:      "partial_apply",
	OpBuiltin:           "builtin",
	OpBranch:            "br",
	OpCondBranch:        "cond_br",
	OpSwitchEnum:        "switch_enum",
	OpCheckedCastBranch: "checked_cast_br",
	OpTryApply:          "try_apply",
	OpReturn:            "return",
	OpThrow:             "throw",
	OpYield:             "yield",
	OpUnreachable:       "unreachable",
}

func (op OpKind) String() string {
	if op < NumOpKinds {
		return opNames[op]
	}
	return fmt.Sprintf("OpKind(%d)", uint8(op))
}

var opByName = func() map[string]OpKind {
	m := make(map[string]OpKind, NumOpKinds)
	for op := OpKind(1); op < NumOpKinds; op++ {
		m[opNames[op]] = op
	}
	return m
}()

// OpKindByName maps a textual mnemonic back to its kind.
func OpKindByName(name string) (OpKind, bool) {
	op, ok := opByName[name]
	return op, ok
}

// IsTerminator reports whether the kind must end a basic block.
func (op OpKind) IsTerminator() bool {
	switch op {
	case OpBranch, OpCondBranch, OpSwitchEnum, OpCheckedCastBranch,
		OpTryApply, OpReturn, OpThrow, OpYield, OpUnreachable:
		return true
	default:
		return false
	}
}

package ossa

import (
	"keel/internal/source"
	"keel/internal/types"
)

type (
	// ValueID indexes a Func's value arena.
	ValueID uint32
	// InstID indexes a Func's instruction arena.
	InstID uint32
	// BlockID indexes a Func's block list.
	BlockID uint32
)

const (
	NoValueID ValueID = ^ValueID(0)
	NoInstID  InstID  = ^InstID(0)
	NoBlockID BlockID = ^BlockID(0)
)

// Value is a single SSA value: its type, its materialized ownership kind,
// and where it is defined. Values defined by instructions have Def set;
// block arguments have Def == NoInstID with Block/ArgIndex filled in.
type Value struct {
	Type      types.TypeID
	Ownership Ownership
	Def       InstID
	Block     BlockID
	ArgIndex  uint32
}

// IsBlockArg reports whether the value is a basic-block argument.
func (v *Value) IsBlockArg() bool {
	return v.Def == NoInstID
}

// OperandFlags carry per-use metadata.
type OperandFlags uint8

const (
	// OperandTypeDependent marks a compile-time metadata operand with no
	// runtime data flow. The verifier skips such operands entirely.
	OperandTypeDependent OperandFlags = 1 << iota
)

// Operand is a non-owning use of a value by an instruction. The using
// instruction and operand index are positional: Inst.Operands[i].
type Operand struct {
	Value ValueID
	Flags OperandFlags
}

// TypeDependent reports whether the operand is compile-time metadata.
func (o Operand) TypeDependent() bool {
	return o.Flags&OperandTypeDependent != 0
}

// SwitchDefault marks a successor that is a switch_enum default (no enum
// case of its own).
const SwitchDefault = ^uint32(0)

// Inst is one instruction. Operand and successor meaning is positional per
// kind:
//
//   - store: operand 0 is the source, operand 1 the destination address.
//   - apply family: operand 0 is the callee, then one operand per indirect
//     result, then one per declared parameter (partial_apply: per captured
//     trailing parameter).
//   - cond_br: operand 0 is the condition, operands 1..1+NumTrueArgs go to
//     Succs[0], the rest to Succs[1].
//   - br: operands map 1:1 onto Succs[0]'s arguments.
//   - switch_enum: Succs[i] handles enum case SuccCases[i] (SwitchDefault
//     for the default successor).
//   - checked_cast_br: Succs[0] is the success block, Succs[1] the failure
//     block; each declares one argument.
//   - try_apply: Succs[0] is the normal block, Succs[1] the error block.
//   - yield: operand i matches the function type's yield i; Succs[0] is the
//     resume block, Succs[1] the unwind block.
type Inst struct {
	Op       OpKind
	Span     source.Span
	Operands []Operand
	Results  []ValueID

	Type        types.TypeID    // kind-specific type: stored/target/result type
	Sym         source.StringID // builtin identifier, function_ref/global_addr symbol
	Lit         source.StringID // literal spelling for int/float/string literals
	Field       uint32          // struct/tuple extract or enum case index
	OnStack     bool            // partial_apply: non-escaping stack closure
	NumTrueArgs uint32          // cond_br: how many operands feed Succs[0]

	Succs     []BlockID
	SuccCases []uint32 // switch_enum only, parallel to Succs
}

// Block owns an ordered instruction list ending in exactly one terminator
// and an ordered argument list. Entry blocks carry function arguments,
// every other block phi arguments.
type Block struct {
	ID     BlockID
	Args   []ValueID
	Instrs []InstID
}

// Terminated reports whether the block ends in a terminator. Blocks are
// transiently unterminated only during construction.
func (b *Block) Terminated(fn *Func) bool {
	if len(b.Instrs) == 0 {
		return false
	}
	return fn.Insts[b.Instrs[len(b.Instrs)-1]].Op.IsTerminator()
}

// Func owns the arenas for one function's values, instructions, and blocks.
// Everything else references them by index.
type Func struct {
	Name source.StringID
	Type types.TypeID // a types.KindFn type carrying the conventions
	Span source.Span

	Values []Value
	Insts  []Inst
	Blocks []Block
	Entry  BlockID
}

// Value returns the arena slot for id.
func (f *Func) Value(id ValueID) *Value {
	return &f.Values[id]
}

// Inst returns the arena slot for id.
func (f *Func) Inst(id InstID) *Inst {
	return &f.Insts[id]
}

// Block returns the block with the given id.
func (f *Func) Block(id BlockID) *Block {
	return &f.Blocks[id]
}

// Module is an immutable verification unit: functions plus the shared type
// and string tables they reference.
type Module struct {
	Strings *source.Interner
	Types   *types.Interner
	Funcs   []*Func
}

// NewModule creates an empty module with fresh interners.
func NewModule() *Module {
	return &Module{
		Strings: source.NewInterner(),
		Types:   types.NewInterner(),
	}
}

// FuncByName finds a function by its interned name.
func (m *Module) FuncByName(name source.StringID) (*Func, bool) {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FnInfo resolves the function type metadata for fn.
func (m *Module) FnInfo(fn *Func) (*types.FnInfo, bool) {
	return m.Types.FnInfo(fn.Type)
}

package ossa

import (
	"testing"

	"keel/internal/source"
	"keel/internal/types"
)

// testEnv bundles a module with some common types for IR construction.
type testEnv struct {
	mod *Module
	obj types.TypeID // class Obj
	i64 types.TypeID
}

func newTestEnv() *testEnv {
	mod := NewModule()
	obj := mod.Types.RegisterClass(mod.Strings.Intern("Obj"), source.Span{})
	return &testEnv{
		mod: mod,
		obj: obj,
		i64: mod.Types.Builtins().Int64,
	}
}

func (e *testEnv) fnType(params []types.Param, results []types.Result) types.TypeID {
	return e.mod.Types.RegisterFn(types.FnInfo{Params: params, Results: results})
}

func TestBuilderDerivesResultOwnership(t *testing.T) {
	e := newTestEnv()
	ft := e.fnType(
		[]types.Param{{Type: e.obj, Conv: types.ConvDirectOwned}},
		[]types.Result{{Type: e.obj, Conv: types.ResultOwned}},
	)
	b := NewBuilder(e.mod, e.mod.Strings.Intern("f"), ft, source.Span{})
	bb := b.AddBlock()
	arg := b.AddArg(bb, e.obj, OwnershipOwned)

	copied := b.Append(bb, Inst{Op: OpCopyValue, Operands: []Operand{{Value: arg}}}, e.obj)[0]
	borrowed := b.Append(bb, Inst{Op: OpBeginBorrow, Operands: []Operand{{Value: copied}}}, e.obj)[0]
	fn := b.Func()

	if got := fn.Value(copied).Ownership; got != OwnershipOwned {
		t.Fatalf("copy_value result ownership = %v, want owned", got)
	}
	if got := fn.Value(borrowed).Ownership; got != OwnershipGuaranteed {
		t.Fatalf("begin_borrow result ownership = %v, want guaranteed", got)
	}
}

func TestBuilderTrivialResultIsNone(t *testing.T) {
	e := newTestEnv()
	ft := e.fnType(nil, nil)
	b := NewBuilder(e.mod, e.mod.Strings.Intern("g"), ft, source.Span{})
	bb := b.AddBlock()
	lit := b.Append(bb, Inst{Op: OpIntLiteral, Lit: e.mod.Strings.Intern("1")}, e.i64)[0]
	copied := b.Append(bb, Inst{Op: OpCopyValue, Operands: []Operand{{Value: lit}}}, e.i64)[0]
	if got := b.Func().Value(copied).Ownership; got != OwnershipNone {
		t.Fatalf("trivial copy_value result ownership = %v, want none", got)
	}
}

func TestBuilderForwardsAggregateOwnership(t *testing.T) {
	e := newTestEnv()
	pair := e.mod.Types.RegisterStruct(e.mod.Strings.Intern("Pair"), source.Span{})
	e.mod.Types.SetStructFields(pair, []types.TypeID{e.i64, e.obj})

	ft := e.fnType([]types.Param{{Type: e.obj, Conv: types.ConvDirectOwned}}, nil)
	b := NewBuilder(e.mod, e.mod.Strings.Intern("h"), ft, source.Span{})
	bb := b.AddBlock()
	arg := b.AddArg(bb, e.obj, OwnershipOwned)
	lit := b.Append(bb, Inst{Op: OpIntLiteral, Lit: e.mod.Strings.Intern("7")}, e.i64)[0]

	agg := b.Append(bb, Inst{
		Op:       OpStruct,
		Operands: []Operand{{Value: lit}, {Value: arg}},
	}, pair)[0]
	if got := b.Func().Value(agg).Ownership; got != OwnershipOwned {
		t.Fatalf("struct of (none, owned) ownership = %v, want owned", got)
	}

	// Extracting the non-trivial field forwards; the trivial field is None.
	field := b.Append(bb, Inst{Op: OpStructExtract, Operands: []Operand{{Value: agg}}, Field: 1}, e.obj)[0]
	if got := b.Func().Value(field).Ownership; got != OwnershipOwned {
		t.Fatalf("struct_extract ownership = %v, want owned", got)
	}
}

func TestBuilderEnumTrivialCaseIsNone(t *testing.T) {
	e := newTestEnv()
	maybe := e.mod.Types.RegisterEnum(e.mod.Strings.Intern("Maybe"), source.Span{})
	e.mod.Types.SetEnumCases(maybe, []types.EnumCase{
		{Name: e.mod.Strings.Intern("none")},
		{Name: e.mod.Strings.Intern("some"), Payload: e.obj},
	})

	ft := e.fnType(nil, nil)
	b := NewBuilder(e.mod, e.mod.Strings.Intern("mk"), ft, source.Span{})
	bb := b.AddBlock()

	// Payload-less case of a non-trivial enum: the value is None even though
	// the type is not trivial.
	v := b.Append(bb, Inst{Op: OpEnum, Type: maybe, Field: 0}, maybe)[0]
	if got := b.Func().Value(v).Ownership; got != OwnershipNone {
		t.Fatalf("payload-less enum case ownership = %v, want none", got)
	}
}

func TestBuilderApplyResultOwnership(t *testing.T) {
	e := newTestEnv()
	callee := e.fnType(nil, []types.Result{{Type: e.obj, Conv: types.ResultOwned}})
	ft := e.fnType(nil, nil)

	b := NewBuilder(e.mod, e.mod.Strings.Intern("call"), ft, source.Span{})
	bb := b.AddBlock()
	fref := b.Append(bb, Inst{Op: OpFunctionRef, Sym: e.mod.Strings.Intern("callee")}, callee)[0]
	res := b.Append(bb, Inst{Op: OpApply, Operands: []Operand{{Value: fref}}}, e.obj)[0]
	if got := b.Func().Value(res).Ownership; got != OwnershipOwned {
		t.Fatalf("apply owned-result ownership = %v, want owned", got)
	}
}

package types

// ParamConvention declares how a value crosses a call boundary.
type ParamConvention uint8

const (
	// ConvDirectOwned transfers ownership to the callee.
	ConvDirectOwned ParamConvention = iota
	// ConvDirectGuaranteed lends the value for the call's duration.
	ConvDirectGuaranteed
	// ConvDirectUnowned passes without any ownership contract.
	ConvDirectUnowned
	// ConvIndirectIn consumes a value passed at an address.
	ConvIndirectIn
	// ConvIndirectInGuaranteed borrows a value passed at an address.
	ConvIndirectInGuaranteed
	// ConvIndirectInConstant is an immutable indirect input.
	ConvIndirectInConstant
	// ConvIndirectInout is a mutable exclusive indirect input/output.
	ConvIndirectInout
	// ConvIndirectInoutAliasable relaxes the exclusivity requirement.
	ConvIndirectInoutAliasable
)

func (c ParamConvention) String() string {
	switch c {
	case ConvDirectOwned:
		return "owned"
	case ConvDirectGuaranteed:
		return "guaranteed"
	case ConvDirectUnowned:
		return "unowned"
	case ConvIndirectIn:
		return "in"
	case ConvIndirectInGuaranteed:
		return "in_guaranteed"
	case ConvIndirectInConstant:
		return "in_constant"
	case ConvIndirectInout:
		return "inout"
	case ConvIndirectInoutAliasable:
		return "inout_aliasable"
	default:
		return "unknown"
	}
}

// IsIndirect reports whether the convention passes through memory.
func (c ParamConvention) IsIndirect() bool {
	switch c {
	case ConvIndirectIn, ConvIndirectInGuaranteed, ConvIndirectInConstant,
		ConvIndirectInout, ConvIndirectInoutAliasable:
		return true
	default:
		return false
	}
}

// ResultConvention declares how a result leaves a call.
type ResultConvention uint8

const (
	// ResultOwned transfers a directly returned value to the caller.
	ResultOwned ResultConvention = iota
	// ResultUnowned returns without an ownership transfer.
	ResultUnowned
	// ResultIndirect writes the result through a caller-provided address.
	ResultIndirect
)

func (c ResultConvention) String() string {
	switch c {
	case ResultOwned:
		return "owned"
	case ResultUnowned:
		return "unowned"
	case ResultIndirect:
		return "indirect"
	default:
		return "unknown"
	}
}

// Param is one declared parameter of a function type.
type Param struct {
	Type TypeID
	Conv ParamConvention
}

// Result is one declared result of a function type.
type Result struct {
	Type TypeID
	Conv ResultConvention
}

// Yield is one declared yield of a coroutine function type.
type Yield struct {
	Type TypeID
	Conv ParamConvention
}

// FnInfo stores metadata for function types: signature plus representation.
// CalleeConv declares how the callee value itself is consumed by a call.
type FnInfo struct {
	Params     []Param
	Results    []Result
	Yields     []Yield
	CalleeConv ParamConvention
	Thick      bool // carries a context (closure); thin functions are trivial
	NoEscape   bool
	Throws     bool
	ErrorType  TypeID
}

// Coroutine reports whether the function yields.
func (fi *FnInfo) Coroutine() bool {
	return len(fi.Yields) > 0
}

// DirectResults returns the declared results that are not indirect.
func (fi *FnInfo) DirectResults() []Result {
	out := make([]Result, 0, len(fi.Results))
	for _, r := range fi.Results {
		if r.Conv != ResultIndirect {
			out = append(out, r)
		}
	}
	return out
}

// IndirectResultCount counts the results passed through memory.
func (fi *FnInfo) IndirectResultCount() int {
	n := 0
	for _, r := range fi.Results {
		if r.Conv == ResultIndirect {
			n++
		}
	}
	return n
}

// RegisterFn creates or finds a function type with the given signature.
func (in *Interner) RegisterFn(info FnInfo) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindFn {
			continue
		}
		if fnInfoEqual(&in.fns[tt.Payload], &info) {
			return id
		}
	}
	in.fns = append(in.fns, FnInfo{
		Params:     clonePars(info.Params),
		Results:    cloneResults(info.Results),
		Yields:     cloneYields(info.Yields),
		CalleeConv: info.CalleeConv,
		Thick:      info.Thick,
		NoEscape:   info.NoEscape,
		Throws:     info.Throws,
		ErrorType:  info.ErrorType,
	})
	slot := in.appendSlot("fn", len(in.fns)-1)
	return in.internRaw(Type{Kind: KindFn, Payload: slot})
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || tt.Payload == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

func fnInfoEqual(a, b *FnInfo) bool {
	if a.CalleeConv != b.CalleeConv || a.Thick != b.Thick || a.NoEscape != b.NoEscape ||
		a.Throws != b.Throws || a.ErrorType != b.ErrorType {
		return false
	}
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) || len(a.Yields) != len(b.Yields) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	for i := range a.Yields {
		if a.Yields[i] != b.Yields[i] {
			return false
		}
	}
	return true
}

func clonePars(ps []Param) []Param {
	if len(ps) == 0 {
		return nil
	}
	out := make([]Param, len(ps))
	copy(out, ps)
	return out
}

func cloneResults(rs []Result) []Result {
	if len(rs) == 0 {
		return nil
	}
	out := make([]Result, len(rs))
	copy(out, rs)
	return out
}

func cloneYields(ys []Yield) []Yield {
	if len(ys) == 0 {
		return nil
	}
	out := make([]Yield, len(ys))
	copy(out, ys)
	return out
}

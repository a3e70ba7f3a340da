package irtext

import (
	"strconv"

	"keel/internal/diag"
	"keel/internal/ossa"
	"keel/internal/types"
)

// parseInst parses one instruction line: optional results, the mnemonic,
// the kind-specific operand syntax, and the result type annotation.
func (fp *fnParser) parseInst() bool {
	p := fp.p

	resultNums, ok := fp.parseResultNames()
	if !ok {
		return false
	}

	opSpan := p.tok.Span
	opName := p.expectIdent()
	if opName == "" {
		return false
	}
	op, known := ossa.OpKindByName(opName)
	if !known || op == ossa.OpInvalid {
		p.errorf(diag.ParUnknownInstruction, opSpan, "unknown instruction %q", opName)
		return false
	}

	inst := ossa.Inst{Op: op, Span: opSpan}
	if !fp.parseOperands(&inst) {
		return false
	}

	var resultTypes []types.TypeID
	if len(resultNums) > 0 {
		if !p.expect(TokColon) {
			return false
		}
		resultTypes, ok = fp.parseResultTypes(len(resultNums))
		if !ok {
			return false
		}
	}

	ids := fp.b.Append(fp.curBB, inst, resultTypes...)
	for i, num := range resultNums {
		if _, dup := fp.vals[num]; dup {
			p.errorf(diag.ParDuplicateValue, opSpan, "%%%d is already defined", num)
			return false
		}
		fp.vals[num] = ids[i]
	}
	return true
}

// parseResultNames parses "%N =" or "(%N, %M) =", returning nil for
// result-less instructions.
func (fp *fnParser) parseResultNames() ([]int, bool) {
	p := fp.p
	switch p.tok.Kind {
	case TokValue:
		num, _ := strconv.Atoi(p.tok.Text)
		p.next()
		if !p.expect(TokAssign) {
			return nil, false
		}
		return []int{num}, true
	case TokLParen:
		p.next()
		var nums []int
		for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
			if len(nums) > 0 && !p.expect(TokComma) {
				return nil, false
			}
			if p.tok.Kind != TokValue {
				p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected a result name, found %s", p.tok.Kind)
				return nil, false
			}
			num, _ := strconv.Atoi(p.tok.Text)
			nums = append(nums, num)
			p.next()
		}
		if !p.expect(TokRParen) || !p.expect(TokAssign) {
			return nil, false
		}
		return nums, true
	default:
		return nil, true
	}
}

func (fp *fnParser) parseResultTypes(n int) ([]types.TypeID, bool) {
	p := fp.p
	if n == 1 {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		return []types.TypeID{t}, true
	}
	if !p.expect(TokLParen) {
		return nil, false
	}
	out := make([]types.TypeID, 0, n)
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		if len(out) > 0 && !p.expect(TokComma) {
			return nil, false
		}
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		out = append(out, t)
	}
	if !p.expect(TokRParen) {
		return nil, false
	}
	if len(out) != n {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "%d results but %d result types", n, len(out))
		return nil, false
	}
	return out, true
}

// parseOperands dispatches on the mnemonic's operand syntax.
func (fp *fnParser) parseOperands(inst *ossa.Inst) bool {
	p := fp.p
	switch inst.Op {
	case ossa.OpIntLiteral:
		return fp.literal(inst, TokInt)
	case ossa.OpFloatLiteral:
		return fp.literal(inst, TokFloat)
	case ossa.OpStringLiteral:
		return fp.literal(inst, TokString)

	case ossa.OpFunctionRef, ossa.OpGlobalAddr:
		if p.tok.Kind != TokAtName {
			p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected @-name, found %s", p.tok.Kind)
			return false
		}
		inst.Sym = p.mod.Strings.Intern(p.tok.Text)
		p.next()
		return true

	case ossa.OpAllocStack, ossa.OpAllocBox, ossa.OpAllocRef, ossa.OpMetatype:
		t, ok := p.parseType()
		if !ok {
			return false
		}
		inst.Type = t
		return true

	case ossa.OpBuiltin:
		if p.tok.Kind != TokString {
			p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected builtin name string, found %s", p.tok.Kind)
			return false
		}
		inst.Sym = p.mod.Strings.Intern(p.tok.Text)
		p.next()
		return fp.callOperands(inst)

	case ossa.OpApply, ossa.OpBeginApply:
		return fp.callee(inst) && fp.callOperands(inst)

	case ossa.OpTryApply:
		if !fp.callee(inst) || !fp.callOperands(inst) {
			return false
		}
		if !p.expect(TokComma) || !p.expectKeyword("normal") {
			return false
		}
		normal, ok := fp.blockRef()
		if !ok || !p.expect(TokComma) || !p.expectKeyword("error") {
			return false
		}
		errBB, ok := fp.blockRef()
		if !ok {
			return false
		}
		inst.Succs = []ossa.BlockID{normal, errBB}
		return true

	case ossa.OpPartialApply:
		if p.tok.Kind == TokLBrack {
			p.next()
			if !p.expectKeyword("stack") || !p.expect(TokRBrack) {
				return false
			}
			inst.OnStack = true
		}
		return fp.callee(inst) && fp.callOperands(inst)

	case ossa.OpStructExtract, ossa.OpTupleExtract, ossa.OpStructElementAddr,
		ossa.OpTupleElementAddr, ossa.OpUncheckedEnumData, ossa.OpRefElementAddr:
		v, ok := fp.valueRef()
		if !ok || !p.expect(TokComma) {
			return false
		}
		idx, ok := p.expectInt()
		if !ok {
			return false
		}
		inst.Operands = []ossa.Operand{{Value: v}}
		inst.Field = uint32(idx) // #nosec G115 -- expectInt rejects negatives
		return true

	case ossa.OpEnum:
		typeSpan := p.tok.Span
		t, ok := p.parseType()
		if !ok || !p.expect(TokComma) {
			return false
		}
		caseSpan := p.tok.Span
		idx, ok := p.expectInt()
		if !ok {
			return false
		}
		info, isEnum := p.mod.Types.EnumInfo(t)
		if !isEnum {
			p.errorf(diag.ParExpectType, typeSpan, "enum instruction needs an enum type")
			return false
		}
		if idx >= len(info.Cases) {
			p.errorf(diag.ParUnknownEnumCase, caseSpan, "enum has no case %d", idx)
			return false
		}
		inst.Type = t
		inst.Field = uint32(idx) // #nosec G115 -- bounded by case count
		if p.tok.Kind == TokComma {
			p.next()
			payload, ok2 := fp.valueRef()
			if !ok2 {
				return false
			}
			inst.Operands = []ossa.Operand{{Value: payload}}
		}
		return true

	case ossa.OpUpcast, ossa.OpRefCast, ossa.OpAddrCast, ossa.OpBitwiseCast, ossa.OpConvertFunction:
		v, ok := fp.valueRef()
		if !ok || !p.expect(TokComma) {
			return false
		}
		t, ok := p.parseType()
		if !ok {
			return false
		}
		inst.Operands = []ossa.Operand{{Value: v}}
		inst.Type = t
		return true

	case ossa.OpCheckedCastBranch:
		v, ok := fp.valueRef()
		if !ok || !p.expect(TokComma) {
			return false
		}
		t, ok := p.parseType()
		if !ok || !p.expect(TokComma) {
			return false
		}
		yes, ok := fp.blockRef()
		if !ok || !p.expect(TokComma) {
			return false
		}
		no, ok := fp.blockRef()
		if !ok {
			return false
		}
		inst.Operands = []ossa.Operand{{Value: v}}
		inst.Type = t
		inst.Succs = []ossa.BlockID{yes, no}
		return true

	case ossa.OpBranch:
		dest, ok := fp.blockRef()
		if !ok {
			return false
		}
		args, ok := fp.optBranchArgs()
		if !ok {
			return false
		}
		inst.Operands = args
		inst.Succs = []ossa.BlockID{dest}
		return true

	case ossa.OpCondBranch:
		cond, ok := fp.valueRef()
		if !ok || !p.expect(TokComma) {
			return false
		}
		trueBB, ok := fp.blockRef()
		if !ok {
			return false
		}
		trueArgs, ok := fp.optBranchArgs()
		if !ok || !p.expect(TokComma) {
			return false
		}
		falseBB, ok := fp.blockRef()
		if !ok {
			return false
		}
		falseArgs, ok := fp.optBranchArgs()
		if !ok {
			return false
		}
		inst.Operands = append([]ossa.Operand{{Value: cond}}, append(trueArgs, falseArgs...)...)
		inst.NumTrueArgs = uint32(len(trueArgs)) // #nosec G115 -- operand counts are small
		inst.Succs = []ossa.BlockID{trueBB, falseBB}
		return true

	case ossa.OpSwitchEnum:
		return fp.switchEnumOperands(inst)

	case ossa.OpYield:
		for p.tok.Kind == TokValue {
			v, ok := fp.valueRef()
			if !ok || !p.expect(TokComma) {
				return false
			}
			inst.Operands = append(inst.Operands, ossa.Operand{Value: v})
		}
		if !p.expectKeyword("resume") {
			return false
		}
		resume, ok := fp.blockRef()
		if !ok || !p.expect(TokComma) || !p.expectKeyword("unwind") {
			return false
		}
		unwind, ok := fp.blockRef()
		if !ok {
			return false
		}
		inst.Succs = []ossa.BlockID{resume, unwind}
		return true

	default:
		// Plain comma-separated value list, possibly empty (return,
		// unreachable).
		for p.tok.Kind == TokValue {
			v, ok := fp.valueRef()
			if !ok {
				return false
			}
			inst.Operands = append(inst.Operands, ossa.Operand{Value: v})
			if p.tok.Kind != TokComma {
				break
			}
			p.next()
		}
		return true
	}
}

func (fp *fnParser) literal(inst *ossa.Inst, want TokenKind) bool {
	p := fp.p
	if p.tok.Kind != want {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected %s, found %s", want, p.tok.Kind)
		return false
	}
	inst.Lit = p.mod.Strings.Intern(p.tok.Text)
	p.next()
	return true
}

func (fp *fnParser) callee(inst *ossa.Inst) bool {
	v, ok := fp.valueRef()
	if !ok {
		return false
	}
	inst.Operands = append(inst.Operands, ossa.Operand{Value: v})
	return true
}

// callOperands parses the parenthesized argument list of calls and
// builtins.
func (fp *fnParser) callOperands(inst *ossa.Inst) bool {
	p := fp.p
	if !p.expect(TokLParen) {
		return false
	}
	first := true
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		if !first && !p.expect(TokComma) {
			return false
		}
		first = false
		v, ok := fp.valueRef()
		if !ok {
			return false
		}
		inst.Operands = append(inst.Operands, ossa.Operand{Value: v})
	}
	return p.expect(TokRParen)
}

// optBranchArgs parses "(%a, %b)" after a block label when present.
func (fp *fnParser) optBranchArgs() ([]ossa.Operand, bool) {
	p := fp.p
	if p.tok.Kind != TokLParen {
		return nil, true
	}
	p.next()
	var out []ossa.Operand
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		if len(out) > 0 && !p.expect(TokComma) {
			return nil, false
		}
		v, ok := fp.valueRef()
		if !ok {
			return nil, false
		}
		out = append(out, ossa.Operand{Value: v})
	}
	if !p.expect(TokRParen) {
		return nil, false
	}
	return out, true
}

func (fp *fnParser) switchEnumOperands(inst *ossa.Inst) bool {
	p := fp.p
	scrut, ok := fp.valueRef()
	if !ok {
		return false
	}
	inst.Operands = []ossa.Operand{{Value: scrut}}
	for p.tok.Kind == TokComma {
		p.next()
		switch {
		case p.eatKeyword("case"):
			idx, ok2 := p.expectInt()
			if !ok2 || !p.expect(TokColon) {
				return false
			}
			dest, ok2 := fp.blockRef()
			if !ok2 {
				return false
			}
			inst.Succs = append(inst.Succs, dest)
			inst.SuccCases = append(inst.SuccCases, uint32(idx)) // #nosec G115 -- expectInt rejects negatives
		case p.eatKeyword("default"):
			if !p.expect(TokColon) {
				return false
			}
			dest, ok2 := fp.blockRef()
			if !ok2 {
				return false
			}
			inst.Succs = append(inst.Succs, dest)
			inst.SuccCases = append(inst.SuccCases, ossa.SwitchDefault)
		default:
			p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected case or default, found %s", p.tok.Kind)
			return false
		}
	}
	return true
}

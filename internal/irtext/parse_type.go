package irtext

import (
	"keel/internal/diag"
	"keel/internal/types"
)

// parseType parses one type expression.
func (p *Parser) parseType() (types.TypeID, bool) {
	ts := p.mod.Types
	switch {
	case p.tok.Kind == TokStar:
		p.next()
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		return ts.Address(elem), true
	case p.tok.Kind == TokLParen:
		return p.parseTupleType()
	case p.tok.Kind == TokDollar:
		return p.parseFnType()
	case p.eatKeyword("box"):
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		return ts.Intern(types.MakeBox(elem)), true
	case p.eatKeyword("unowned"):
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		return ts.Intern(types.MakeUnowned(elem)), true
	case p.eatKeyword("metatype"):
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		return ts.Intern(types.MakeMetatype(elem)), true
	case p.tok.Kind == TokIdent:
		sp := p.tok.Span
		name := p.tok.Text
		p.next()
		return p.lookupNamed(name, sp)
	default:
		p.errorf(diag.ParExpectType, p.tok.Span, "expected a type, found %s", p.tok.Kind)
		return types.NoTypeID, false
	}
}

func (p *Parser) parseTupleType() (types.TypeID, bool) {
	p.next() // (
	var elems []types.TypeID
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		if len(elems) > 0 && !p.expect(TokComma) {
			return types.NoTypeID, false
		}
		e, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		elems = append(elems, e)
	}
	if !p.expect(TokRParen) {
		return types.NoTypeID, false
	}
	return p.mod.Types.Tuple(elems), true
}

// parseFnType parses $[attrs](params) [yields (...)] -> [throws E] results.
func (p *Parser) parseFnType() (types.TypeID, bool) {
	p.next() // $
	info := types.FnInfo{Thick: true, CalleeConv: types.ConvDirectGuaranteed}

	for p.tok.Kind == TokLBrack {
		p.next()
		attr := p.expectIdent()
		switch attr {
		case "noescape":
			info.NoEscape = true
		case "thin":
			info.Thick = false
		case "callee_owned":
			info.CalleeConv = types.ConvDirectOwned
		case "":
			return types.NoTypeID, false
		default:
			p.errorf(diag.ParBadAttribute, p.tok.Span, "unknown function attribute %s", attr)
			return types.NoTypeID, false
		}
		if !p.expect(TokRBrack) {
			return types.NoTypeID, false
		}
	}

	if !p.expect(TokLParen) {
		return types.NoTypeID, false
	}
	for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
		if len(info.Params) > 0 && !p.expect(TokComma) {
			return types.NoTypeID, false
		}
		conv, ok := p.parseParamConv()
		if !ok {
			return types.NoTypeID, false
		}
		pt, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		info.Params = append(info.Params, types.Param{Type: pt, Conv: conv})
	}
	if !p.expect(TokRParen) {
		return types.NoTypeID, false
	}

	if p.eatKeyword("yields") {
		if !p.expect(TokLParen) {
			return types.NoTypeID, false
		}
		for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
			if len(info.Yields) > 0 && !p.expect(TokComma) {
				return types.NoTypeID, false
			}
			conv, ok := p.parseParamConv()
			if !ok {
				return types.NoTypeID, false
			}
			yt, ok := p.parseType()
			if !ok {
				return types.NoTypeID, false
			}
			info.Yields = append(info.Yields, types.Yield{Type: yt, Conv: conv})
		}
		if !p.expect(TokRParen) {
			return types.NoTypeID, false
		}
	}

	if !p.expect(TokArrow) {
		return types.NoTypeID, false
	}

	if p.eatKeyword("throws") {
		info.Throws = true
		// An explicit error type follows unless the next token already
		// starts the result list.
		if p.tok.Kind == TokIdent && !isResultConv(p.tok.Text) {
			et, ok := p.parseType()
			if !ok {
				return types.NoTypeID, false
			}
			info.ErrorType = et
		} else if p.tok.Kind == TokStar || p.tok.Kind == TokDollar {
			et, ok := p.parseType()
			if !ok {
				return types.NoTypeID, false
			}
			info.ErrorType = et
		}
	}

	results, ok := p.parseResults()
	if !ok {
		return types.NoTypeID, false
	}
	info.Results = results
	return p.mod.Types.RegisterFn(info), true
}

func (p *Parser) parseResults() ([]types.Result, bool) {
	if p.tok.Kind == TokLParen {
		p.next()
		var out []types.Result
		for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
			if len(out) > 0 && !p.expect(TokComma) {
				return nil, false
			}
			r, ok := p.parseOneResult()
			if !ok {
				return nil, false
			}
			out = append(out, r)
		}
		if !p.expect(TokRParen) {
			return nil, false
		}
		return out, true
	}
	r, ok := p.parseOneResult()
	if !ok {
		return nil, false
	}
	return []types.Result{r}, true
}

func (p *Parser) parseOneResult() (types.Result, bool) {
	var conv types.ResultConvention
	switch {
	case p.eatKeyword("owned"):
		conv = types.ResultOwned
	case p.eatKeyword("unowned"):
		conv = types.ResultUnowned
	case p.eatKeyword("indirect"):
		conv = types.ResultIndirect
	default:
		p.errorf(diag.ParExpectConvention, p.tok.Span, "expected a result convention, found %s", p.tok.Kind)
		return types.Result{}, false
	}
	rt, ok := p.parseType()
	if !ok {
		return types.Result{}, false
	}
	return types.Result{Type: rt, Conv: conv}, true
}

func (p *Parser) parseParamConv() (types.ParamConvention, bool) {
	if p.tok.Kind != TokIdent {
		p.errorf(diag.ParExpectConvention, p.tok.Span, "expected a parameter convention, found %s", p.tok.Kind)
		return 0, false
	}
	var conv types.ParamConvention
	switch p.tok.Text {
	case "owned":
		conv = types.ConvDirectOwned
	case "guaranteed":
		conv = types.ConvDirectGuaranteed
	case "unowned":
		conv = types.ConvDirectUnowned
	case "in":
		conv = types.ConvIndirectIn
	case "in_guaranteed":
		conv = types.ConvIndirectInGuaranteed
	case "in_constant":
		conv = types.ConvIndirectInConstant
	case "inout":
		conv = types.ConvIndirectInout
	case "inout_aliasable":
		conv = types.ConvIndirectInoutAliasable
	default:
		p.errorf(diag.ParExpectConvention, p.tok.Span, "unknown convention %s", p.tok.Text)
		return 0, false
	}
	p.next()
	return conv, true
}

func isResultConv(s string) bool {
	switch s {
	case "owned", "unowned", "indirect":
		return true
	default:
		return false
	}
}

package irtext

import (
	"strconv"

	"keel/internal/diag"
	"keel/internal/ossa"
)

// fnParser carries the per-function state: the builder plus the textual
// numbering maps for %N values and bbN blocks.
type fnParser struct {
	p *Parser
	b *ossa.Builder

	vals   map[int]ossa.ValueID
	headed map[ossa.BlockID]bool
	curBB  ossa.BlockID
	haveBB bool
}

func (p *Parser) parseFn() {
	fnSpan := p.tok.Span
	p.next() // fn
	if p.tok.Kind != TokAtName {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected @-name after fn, found %s", p.tok.Kind)
		p.syncTop()
		return
	}
	name := p.tok.Text
	p.next()
	if !p.expect(TokColon) {
		p.syncTop()
		return
	}
	typeSpan := p.tok.Span
	ft, ok := p.parseType()
	if !ok {
		p.syncTop()
		return
	}
	if _, isFn := p.mod.Types.FnInfo(ft); !isFn {
		p.errorf(diag.ParExpectType, typeSpan, "fn @%s needs a function type", name)
		p.syncTop()
		return
	}
	if !p.expect(TokLBrace) {
		p.syncTop()
		return
	}

	fp := &fnParser{
		p:      p,
		b:      ossa.NewBuilder(p.mod, p.mod.Strings.Intern(name), ft, fnSpan),
		vals:   make(map[int]ossa.ValueID),
		headed: make(map[ossa.BlockID]bool),
	}
	fp.parseBody()
	fp.b.Finish()
}

func (fp *fnParser) parseBody() {
	p := fp.p
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		if bbNum, isHeader := fp.atBlockHeader(); isHeader {
			fp.parseBlockHeader(bbNum)
			continue
		}
		if !fp.haveBB {
			p.errorf(diag.ParUnexpectedToken, p.tok.Span, "instruction before the first block header")
			p.syncTop()
			return
		}
		if !fp.parseInst() {
			p.syncTop()
			return
		}
	}
	p.expect(TokRBrace)
}

// atBlockHeader reports whether the current token is a bbN label starting
// a block header, i.e. followed by '(' or ':'.
func (fp *fnParser) atBlockHeader() (int, bool) {
	p := fp.p
	if p.tok.Kind != TokIdent {
		return 0, false
	}
	num, ok := blockNumber(p.tok.Text)
	if !ok {
		return 0, false
	}
	save := *p.sc
	la := p.sc.Next()
	*p.sc = save
	if la.Kind != TokLParen && la.Kind != TokColon {
		return 0, false
	}
	return num, true
}

func (fp *fnParser) parseBlockHeader(num int) {
	p := fp.p
	headerSpan := p.tok.Span
	p.next() // bbN

	bb := fp.ensureBlock(num)
	if fp.headed[bb] {
		p.errorf(diag.ParDuplicateBlock, headerSpan, "bb%d is already defined", num)
		p.syncTop()
		return
	}
	fp.headed[bb] = true
	fp.curBB = bb
	fp.haveBB = true

	if p.tok.Kind == TokLParen {
		p.next()
		first := true
		for p.tok.Kind != TokRParen && p.tok.Kind != TokEOF {
			if !first && !p.expect(TokComma) {
				return
			}
			first = false
			if !fp.parseBlockArg(bb) {
				return
			}
		}
		if !p.expect(TokRParen) {
			return
		}
	}
	p.expect(TokColon)
}

// parseBlockArg parses one "%N: ownership Type" declaration.
func (fp *fnParser) parseBlockArg(bb ossa.BlockID) bool {
	p := fp.p
	if p.tok.Kind != TokValue {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected a value declaration, found %s", p.tok.Kind)
		return false
	}
	num, _ := strconv.Atoi(p.tok.Text)
	declSpan := p.tok.Span
	p.next()
	if !p.expect(TokColon) {
		return false
	}
	ownName := p.expectIdent()
	own, ok := ossa.ParseOwnership(ownName)
	if !ok {
		p.errorf(diag.ParExpectOwnership, declSpan, "unknown ownership kind %q", ownName)
		return false
	}
	typ, ok := p.parseType()
	if !ok {
		return false
	}
	if _, dup := fp.vals[num]; dup {
		p.errorf(diag.ParDuplicateValue, declSpan, "%%%d is already defined", num)
		return false
	}
	fp.vals[num] = fp.b.AddArg(bb, typ, own)
	return true
}

// ensureBlock grows the block list so index num exists. Blocks are created
// in numeric order, so BlockID equals the textual number.
func (fp *fnParser) ensureBlock(num int) ossa.BlockID {
	for len(fp.b.Func().Blocks) <= num {
		fp.b.AddBlock()
	}
	return ossa.BlockID(num) // #nosec G115 -- bounded by the loop above
}

// valueRef resolves a %N use.
func (fp *fnParser) valueRef() (ossa.ValueID, bool) {
	p := fp.p
	if p.tok.Kind != TokValue {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected a value reference, found %s", p.tok.Kind)
		return 0, false
	}
	num, _ := strconv.Atoi(p.tok.Text)
	id, ok := fp.vals[num]
	if !ok {
		p.errorf(diag.ParUnknownValue, p.tok.Span, "%%%d is not defined here", num)
		return 0, false
	}
	p.next()
	return id, true
}

// blockRef resolves a bbN use, creating the block when it is a forward
// reference.
func (fp *fnParser) blockRef() (ossa.BlockID, bool) {
	p := fp.p
	if p.tok.Kind != TokIdent {
		p.errorf(diag.ParUnknownBlock, p.tok.Span, "expected a block label, found %s", p.tok.Kind)
		return 0, false
	}
	num, ok := blockNumber(p.tok.Text)
	if !ok {
		p.errorf(diag.ParUnknownBlock, p.tok.Span, "expected a block label, found %s", p.tok.Text)
		return 0, false
	}
	p.next()
	return fp.ensureBlock(num), true
}

func blockNumber(s string) (int, bool) {
	if len(s) < 3 || s[0] != 'b' || s[1] != 'b' {
		return 0, false
	}
	n := 0
	for i := 2; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// Package irtext parses the textual IR format. The ossa printer emits the
// same syntax, so printing a parsed module and reparsing it is a fixed
// point on canonical output.
package irtext

import (
	"fmt"
	"strconv"

	"keel/internal/diag"
	"keel/internal/ossa"
	"keel/internal/source"
	"keel/internal/types"
)

// Parser builds an ossa.Module from one file's token stream. Errors are
// reported as diagnostics and recovery skips to the next top-level
// declaration; a file that produced any error yields ok == false.
type Parser struct {
	mod  *ossa.Module
	file *source.File
	rep  diag.Reporter
	sc   *Scanner
	tok  Token

	named  map[string]types.TypeID
	failed bool
}

// ParseFile parses decls and functions from file into mod.
func ParseFile(mod *ossa.Module, file *source.File, rep diag.Reporter) bool {
	p := &Parser{
		mod:   mod,
		file:  file,
		rep:   rep,
		sc:    NewScanner(file, rep),
		named: make(map[string]types.TypeID),
	}
	p.next()
	p.parseTop()
	return !p.failed
}

func (p *Parser) parseTop() {
	for p.tok.Kind != TokEOF {
		switch {
		case p.atKeyword("class"):
			p.parseClassDecl()
		case p.atKeyword("struct"):
			p.parseStructDecl()
		case p.atKeyword("enum"):
			p.parseEnumDecl()
		case p.atKeyword("fn"):
			p.parseFn()
		default:
			p.errorf(diag.ParUnexpectedToken, p.tok.Span,
				"expected a declaration, found %s", p.tok.Kind)
			p.syncTop()
		}
	}
}

func (p *Parser) parseClassDecl() {
	p.next() // class
	name := p.expectIdent()
	if name == "" {
		p.syncTop()
		return
	}
	if !p.declareNominal(name) {
		return
	}
	p.named[name] = p.mod.Types.RegisterClass(p.mod.Strings.Intern(name), p.tok.Span)
}

func (p *Parser) parseStructDecl() {
	declSpan := p.tok.Span
	p.next() // struct
	name := p.expectIdent()
	if name == "" || !p.declareNominal(name) {
		p.syncTop()
		return
	}
	id := p.mod.Types.RegisterStruct(p.mod.Strings.Intern(name), declSpan)
	p.named[name] = id

	if !p.expect(TokLBrace) {
		p.syncTop()
		return
	}
	var fields []types.TypeID
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		if len(fields) > 0 && !p.expect(TokComma) {
			p.syncTop()
			return
		}
		// Field names are optional documentation; only types matter.
		if p.tok.Kind == TokIdent && p.peekIsColon() {
			p.next()
			p.next()
		}
		ft, ok := p.parseType()
		if !ok {
			p.syncTop()
			return
		}
		fields = append(fields, ft)
	}
	p.expect(TokRBrace)
	p.mod.Types.SetStructFields(id, fields)
}

func (p *Parser) parseEnumDecl() {
	declSpan := p.tok.Span
	p.next() // enum
	name := p.expectIdent()
	if name == "" || !p.declareNominal(name) {
		p.syncTop()
		return
	}
	id := p.mod.Types.RegisterEnum(p.mod.Strings.Intern(name), declSpan)
	p.named[name] = id

	if !p.expect(TokLBrace) {
		p.syncTop()
		return
	}
	var cases []types.EnumCase
	for p.tok.Kind != TokRBrace && p.tok.Kind != TokEOF {
		if len(cases) > 0 && !p.expect(TokComma) {
			p.syncTop()
			return
		}
		caseName := p.expectIdent()
		if caseName == "" {
			p.syncTop()
			return
		}
		ec := types.EnumCase{Name: p.mod.Strings.Intern(caseName)}
		if p.tok.Kind == TokLParen {
			p.next()
			payload, ok := p.parseType()
			if !ok || !p.expect(TokRParen) {
				p.syncTop()
				return
			}
			ec.Payload = payload
		}
		cases = append(cases, ec)
	}
	p.expect(TokRBrace)
	p.mod.Types.SetEnumCases(id, cases)
}

func (p *Parser) declareNominal(name string) bool {
	if _, dup := p.named[name]; dup {
		p.errorf(diag.ParDuplicateType, p.tok.Span, "type %s is already declared", name)
		return false
	}
	return true
}

// lookupNamed resolves a type name: numeric builtins first, then declared
// nominals.
func (p *Parser) lookupNamed(name string, sp source.Span) (types.TypeID, bool) {
	ts := p.mod.Types
	switch name {
	case "Bool":
		return ts.Builtins().Bool, true
	case "RawPointer":
		return ts.Builtins().RawPointer, true
	}
	for _, num := range [...]struct {
		prefix string
		make   func(types.Width) types.Type
	}{
		{"Int", types.MakeInt},
		{"Uint", types.MakeUint},
		{"Float", types.MakeFloat},
	} {
		if rest, ok := cutPrefix(name, num.prefix); ok {
			if w, ok2 := parseWidth(rest); ok2 {
				return ts.Intern(num.make(w)), true
			}
		}
	}
	if id, ok := p.named[name]; ok {
		return id, true
	}
	p.errorf(diag.ParUnknownType, sp, "unknown type %s", name)
	return types.NoTypeID, false
}

func parseWidth(s string) (types.Width, bool) {
	switch s {
	case "8":
		return types.Width8, true
	case "16":
		return types.Width16, true
	case "32":
		return types.Width32, true
	case "64":
		return types.Width64, true
	default:
		return types.WidthAny, false
	}
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

// --- token plumbing ---

func (p *Parser) next() {
	p.tok = p.sc.Next()
}

func (p *Parser) atKeyword(kw string) bool {
	return p.tok.Kind == TokIdent && p.tok.Text == kw
}

// eatKeyword consumes kw when it is the current token.
func (p *Parser) eatKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind) bool {
	if p.tok.Kind != kind {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected %s, found %s", kind, p.tok.Kind)
		return false
	}
	p.next()
	return true
}

func (p *Parser) expectIdent() string {
	if p.tok.Kind != TokIdent {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected identifier, found %s", p.tok.Kind)
		return ""
	}
	text := p.tok.Text
	p.next()
	return text
}

func (p *Parser) expectKeyword(kw string) bool {
	if !p.atKeyword(kw) {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected %q, found %s", kw, p.tok.Kind)
		return false
	}
	p.next()
	return true
}

// peekIsColon looks one token ahead without advancing the stream past it.
func (p *Parser) peekIsColon() bool {
	save := *p.sc
	tok := p.sc.Next()
	*p.sc = save
	return tok.Kind == TokColon
}

func (p *Parser) expectInt() (int, bool) {
	if p.tok.Kind != TokInt {
		p.errorf(diag.ParUnexpectedToken, p.tok.Span, "expected integer, found %s", p.tok.Kind)
		return 0, false
	}
	n, err := strconv.Atoi(p.tok.Text)
	if err != nil || n < 0 {
		p.errorf(diag.ParBadNumber, p.tok.Span, "bad index %s", p.tok.Text)
		return 0, false
	}
	p.next()
	return n, true
}

func (p *Parser) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	p.failed = true
	diag.ReportError(p.rep, code, sp, fmt.Sprintf(format, args...))
}

// syncTop discards tokens until the next plausible top-level declaration,
// balancing braces so a body never leaks into recovery.
func (p *Parser) syncTop() {
	depth := 0
	for p.tok.Kind != TokEOF {
		switch {
		case p.tok.Kind == TokLBrace:
			depth++
		case p.tok.Kind == TokRBrace:
			if depth > 0 {
				depth--
			}
		case depth == 0 &&
			(p.atKeyword("fn") || p.atKeyword("class") || p.atKeyword("struct") || p.atKeyword("enum")):
			return
		}
		p.next()
	}
}

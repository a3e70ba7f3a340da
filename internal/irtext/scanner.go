package irtext

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"keel/internal/diag"
	"keel/internal/source"
)

// Scanner turns a source.File into a token stream. It never fails hard:
// malformed input yields TokInvalid plus a Par* diagnostic and scanning
// continues at the next byte.
type Scanner struct {
	file *source.File
	rep  diag.Reporter
	pos  uint32
}

func NewScanner(file *source.File, rep diag.Reporter) *Scanner {
	return &Scanner{file: file, rep: rep}
}

func (s *Scanner) Next() Token {
	s.skipBlanks()
	if s.eof() {
		return Token{Kind: TokEOF, Span: s.spanFrom(s.pos)}
	}

	start := s.pos
	ch := s.file.Content[s.pos]
	switch {
	case ch == '%':
		s.pos++
		digits := s.takeWhile(isDigit)
		if digits == "" {
			s.report(diag.ParUnexpectedToken, start, "'%' must be followed by a value number")
			return Token{Kind: TokInvalid, Span: s.spanFrom(start)}
		}
		return Token{Kind: TokValue, Text: digits, Span: s.spanFrom(start)}
	case ch == '@':
		s.pos++
		name := s.takeWhile(isIdentByte)
		if name == "" {
			s.report(diag.ParUnexpectedToken, start, "'@' must be followed by a name")
			return Token{Kind: TokInvalid, Span: s.spanFrom(start)}
		}
		return Token{Kind: TokAtName, Text: name, Span: s.spanFrom(start)}
	case ch == '"':
		return s.scanString()
	case isDigit(ch) || (ch == '-' && s.pos+1 < uint32(len(s.file.Content)) && isDigit(s.file.Content[s.pos+1])):
		return s.scanNumber()
	case isIdentStartByte(ch) || ch >= utf8.RuneSelf:
		return s.scanIdent()
	default:
		return s.scanPunct()
	}
}

func (s *Scanner) scanIdent() Token {
	start := s.pos
	hasUnicode := false
	for !s.eof() {
		b := s.file.Content[s.pos]
		if isIdentByte(b) {
			s.pos++
			continue
		}
		if b >= utf8.RuneSelf {
			r, sz := utf8.DecodeRune(s.file.Content[s.pos:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			hasUnicode = true
			s.pos += uint32(sz)
			continue
		}
		break
	}
	text := string(s.file.Content[start:s.pos])
	if hasUnicode {
		// Identifiers compare by NFC form so visually identical names
		// intern to the same symbol.
		text = norm.NFC.String(text)
	}
	return Token{Kind: TokIdent, Text: text, Span: s.spanFrom(start)}
}

func (s *Scanner) scanNumber() Token {
	start := s.pos
	if s.file.Content[s.pos] == '-' {
		s.pos++
	}
	s.takeWhile(isDigit)
	kind := TokInt
	if !s.eof() && s.file.Content[s.pos] == '.' &&
		s.pos+1 < uint32(len(s.file.Content)) && isDigit(s.file.Content[s.pos+1]) {
		kind = TokFloat
		s.pos++
		s.takeWhile(isDigit)
	}
	if !s.eof() && (s.file.Content[s.pos] == 'e' || s.file.Content[s.pos] == 'E') {
		kind = TokFloat
		s.pos++
		if !s.eof() && (s.file.Content[s.pos] == '+' || s.file.Content[s.pos] == '-') {
			s.pos++
		}
		if s.takeWhile(isDigit) == "" {
			s.report(diag.ParBadNumber, start, "exponent has no digits")
			return Token{Kind: TokInvalid, Span: s.spanFrom(start)}
		}
	}
	return Token{Kind: kind, Text: string(s.file.Content[start:s.pos]), Span: s.spanFrom(start)}
}

func (s *Scanner) scanString() Token {
	start := s.pos
	s.pos++ // opening quote
	for !s.eof() {
		b := s.file.Content[s.pos]
		if b == '\n' {
			break
		}
		if b == '\\' && s.pos+1 < uint32(len(s.file.Content)) {
			s.pos += 2
			continue
		}
		if b == '"' {
			s.pos++
			quoted := string(s.file.Content[start:s.pos])
			text, err := strconv.Unquote(quoted)
			if err != nil {
				s.report(diag.ParUnterminatedString, start, "bad string literal "+quoted)
				return Token{Kind: TokInvalid, Span: s.spanFrom(start)}
			}
			return Token{Kind: TokString, Text: text, Span: s.spanFrom(start)}
		}
		s.pos++
	}
	s.report(diag.ParUnterminatedString, start, "unterminated string literal")
	return Token{Kind: TokInvalid, Span: s.spanFrom(start)}
}

func (s *Scanner) scanPunct() Token {
	start := s.pos
	ch := s.file.Content[s.pos]
	s.pos++
	var kind TokenKind
	switch ch {
	case '(':
		kind = TokLParen
	case ')':
		kind = TokRParen
	case '{':
		kind = TokLBrace
	case '}':
		kind = TokRBrace
	case '[':
		kind = TokLBrack
	case ']':
		kind = TokRBrack
	case ',':
		kind = TokComma
	case ':':
		kind = TokColon
	case '*':
		kind = TokStar
	case '$':
		kind = TokDollar
	case '=':
		kind = TokAssign
	case '-':
		if !s.eof() && s.file.Content[s.pos] == '>' {
			s.pos++
			kind = TokArrow
			break
		}
		fallthrough
	default:
		s.report(diag.ParUnknownChar, start, "unexpected character "+strconv.QuoteRune(rune(ch)))
		kind = TokInvalid
	}
	return Token{Kind: kind, Span: s.spanFrom(start)}
}

func (s *Scanner) skipBlanks() {
	for !s.eof() {
		switch b := s.file.Content[s.pos]; {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			s.pos++
		case b == '/' && s.pos+1 < uint32(len(s.file.Content)) && s.file.Content[s.pos+1] == '/':
			for !s.eof() && s.file.Content[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *Scanner) takeWhile(pred func(byte) bool) string {
	start := s.pos
	for !s.eof() && pred(s.file.Content[s.pos]) {
		s.pos++
	}
	return string(s.file.Content[start:s.pos])
}

func (s *Scanner) eof() bool {
	return s.pos >= uint32(len(s.file.Content))
}

func (s *Scanner) spanFrom(start uint32) source.Span {
	return source.Span{File: s.file.ID, Start: start, End: s.pos}
}

func (s *Scanner) report(code diag.Code, start uint32, msg string) {
	diag.ReportError(s.rep, code, s.spanFrom(start), msg)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStartByte(b) || isDigit(b) || b == '.'
}

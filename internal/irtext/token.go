package irtext

import "keel/internal/source"

// TokenKind enumerates the lexical classes of the textual IR.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokInvalid
	TokIdent   // class, fn, bb0, owned, instruction names
	TokValue   // %12
	TokAtName  // @main
	TokInt     // 42, -7
	TokFloat   // 1.5, -0.25
	TokString  // "builtin name"
	TokLParen  // (
	TokRParen  // )
	TokLBrace  // {
	TokRBrace  // }
	TokLBrack  // [
	TokRBrack  // ]
	TokComma   // ,
	TokColon   // :
	TokStar    // *
	TokDollar  // $
	TokAssign  // =
	TokArrow   // ->
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "end of file"
	case TokInvalid:
		return "invalid token"
	case TokIdent:
		return "identifier"
	case TokValue:
		return "value reference"
	case TokAtName:
		return "@-name"
	case TokInt:
		return "integer"
	case TokFloat:
		return "float"
	case TokString:
		return "string"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokLBrace:
		return "'{'"
	case TokRBrace:
		return "'}'"
	case TokLBrack:
		return "'['"
	case TokRBrack:
		return "']'"
	case TokComma:
		return "','"
	case TokColon:
		return "':'"
	case TokStar:
		return "'*'"
	case TokDollar:
		return "'$'"
	case TokAssign:
		return "'='"
	case TokArrow:
		return "'->'"
	default:
		return "unknown token"
	}
}

// Token is one lexeme with its source span. Text holds the decoded
// payload: identifier spelling, digits, unquoted string contents, the
// number after % or the name after @.
type Token struct {
	Kind TokenKind
	Text string
	Span source.Span
}

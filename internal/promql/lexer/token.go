package lexer

import (
	"fmt"
	"text/scanner"
)

// Token is a PromQL token.
type Token struct {
	Type TokenType
	// Text is a token text.
	//
	// For strings, it contains unquoted value.
	Text string
	// Pos is a position of the first token byte.
	Pos scanner.Position
	// End is an offset of the byte right after the token.
	End int
}

// TokenType defines PromQL token type.
type TokenType int

const (
	Invalid TokenType = iota
	EOF
	Ident
	// Literals
	String
	Number
	Duration

	Comma
	Colon
	At
	OpenBrace
	CloseBrace
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	// Label matchers.
	Eq
	NotEq
	Re
	NotRe

	By
	Without
	Bool
	Offset
	On
	Ignoring
	GroupLeft
	GroupRight

	// Binary operations
	Or
	And
	Unless
	Atan2
	Add
	Sub
	Mul
	Div
	Mod
	Pow
	// Comparison operations
	CmpEq
	Gt
	Gte
	Lt
	Lte

	// Aggregation operations
	Sum
	Avg
	Count
	Min
	Max
	Group
	Stddev
	Stdvar
	Topk
	Bottomk
	CountValues
	Quantile
	Limitk
	LimitRatio
)

// IsAggregation returns true if token is aggregation operator name.
func (tt TokenType) IsAggregation() bool {
	return tt >= Sum && tt <= LimitRatio
}

// IsKeyword returns true if token is a reserved word.
//
// Keywords are still valid label names.
func (tt TokenType) IsKeyword() bool {
	switch {
	case tt >= By && tt <= Atan2:
		return true
	case tt.IsAggregation():
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

var tokenNames = func() map[TokenType]string {
	m := map[TokenType]string{
		Invalid:  "Invalid",
		EOF:      "EOF",
		Ident:    "Ident",
		String:   "String",
		Number:   "Number",
		Duration: "Duration",
	}
	for text, tt := range tokens {
		m[tt] = text
	}
	return m
}()

var tokens = map[string]TokenType{
	",": Comma,
	":": Colon,
	"@": At,
	"{": OpenBrace,
	"}": CloseBrace,
	"(": OpenParen,
	")": CloseParen,
	"[": OpenBracket,
	"]": CloseBracket,

	"=":  Eq,
	"!=": NotEq,
	"=~": Re,
	"!~": NotRe,

	"by":          By,
	"without":     Without,
	"bool":        Bool,
	"offset":      Offset,
	"on":          On,
	"ignoring":    Ignoring,
	"group_left":  GroupLeft,
	"group_right": GroupRight,

	// Binary operations.
	"or":     Or,
	"and":    And,
	"unless": Unless,
	"atan2":  Atan2,
	"+":      Add,
	"-":      Sub,
	"*":      Mul,
	"/":      Div,
	"%":      Mod,
	"^":      Pow,
	// Comparison operations.
	"==": CmpEq,
	">":  Gt,
	">=": Gte,
	"<":  Lt,
	"<=": Lte,

	"sum":          Sum,
	"avg":          Avg,
	"count":        Count,
	"min":          Min,
	"max":          Max,
	"group":        Group,
	"stddev":       Stddev,
	"stdvar":       Stdvar,
	"topk":         Topk,
	"bottomk":      Bottomk,
	"count_values": CountValues,
	"quantile":     Quantile,
	"limitk":       Limitk,
	"limit_ratio":  LimitRatio,
}

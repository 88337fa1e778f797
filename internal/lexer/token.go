package lexer

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNewline

	TokenIf
	TokenThen
	TokenElse
	TokenWhile
	TokenDo
	TokenFor
	TokenIn
	TokenFunction
	TokenReturn

	TokenBoolean
	TokenUnknown
	TokenNumber
	TokenMoney
	TokenTime
	TokenText

	TokenCommentStart
	TokenCommentEnd

	TokenAssign
	TokenEqual
	TokenGreater
	TokenGreaterEqual
	TokenLess
	TokenLessEqual
	TokenDot
	TokenParenOpen
	TokenParenClose

	TokenError
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "Newline"

	case TokenIf:
		return "If"
	case TokenThen:
		return "Then"
	case TokenElse:
		return "Else"
	case TokenWhile:
		return "While"
	case TokenDo:
		return "Do"
	case TokenFor:
		return "For"
	case TokenIn:
		return "In"
	case TokenFunction:
		return "Function"
	case TokenReturn:
		return "Return"

	case TokenBoolean:
		return "Boolean"
	case TokenUnknown:
		return "Unknown"
	case TokenNumber:
		return "Number"
	case TokenMoney:
		return "Money"
	case TokenTime:
		return "Time"
	case TokenText:
		return "Text"

	case TokenCommentStart:
		return "Comment start"
	case TokenCommentEnd:
		return "Comment end"

	case TokenAssign:
		return "Assign"
	case TokenEqual:
		return "Equals"
	case TokenGreater:
		return "Greater"
	case TokenGreaterEqual:
		return "Greater or equal"
	case TokenLess:
		return "Less"
	case TokenLessEqual:
		return "Less or equal"
	case TokenDot:
		return "Dot"
	case TokenParenOpen:
		return "Parentheses open"
	case TokenParenClose:
		return "Parentheses close"

	case TokenError:
		return "Error"
	}

	return "<unknown>"
}

// Token is one classified lexeme. For TokenError the Lexeme carries the
// diagnostic message instead of source text.
type Token struct {
	Type   TokenType
	Lexeme string
	Start  Location
}

type Location struct {
	File string

	// 1-based
	Line, Column int
}

func (l *Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// keywords maps reserved bare words to their token type. Matching is exact
// and case-sensitive; any other bare word scans as TokenText.
var keywords = map[string]TokenType{
	"if":       TokenIf,
	"then":     TokenThen,
	"else":     TokenElse,
	"while":    TokenWhile,
	"do":       TokenDo,
	"for":      TokenFor,
	"in":       TokenIn,
	"function": TokenFunction,
	"return":   TokenReturn,
	"true":     TokenBoolean,
	"false":    TokenBoolean,
	"unknown":  TokenUnknown,
}

// Keyword returns the token type reserved for word, if any.
func Keyword(word string) (TokenType, bool) {
	t, ok := keywords[word]
	return t, ok
}

// Keywords lists every reserved word in sorted order.
func Keywords() []string {
	words := maps.Keys(keywords)
	slices.Sort(words)
	return words
}

package lexer

import (
	"fmt"
	"unicode/utf8"
)

// Lexer scans a source buffer into a flat token sequence in a single pass.
// Malformed input becomes TokenError entries in the stream and scanning
// continues on the next character, so one bad literal never hides the rest
// of the file.
type Lexer struct {
	file     []byte
	fileName string

	cur  int
	line int
	col  int

	start    int
	startLoc Location

	tokens   []Token
	hadError bool
}

func New(file []byte, fileName string) *Lexer {
	return &Lexer{
		file:     file,
		fileName: fileName,
		line:     1,
		col:      1,
	}
}

// ScanTokens scans the whole buffer and returns every token found, ending
// with a single TokenEOF whose lexeme is empty. Scanning never fails; use
// HadError to learn whether any TokenError was emitted.
func (l *Lexer) ScanTokens() []Token {
	l.cur = 0
	l.line = 1
	l.col = 1
	l.tokens = nil
	l.hadError = false

	for !l.atEnd() {
		l.begin()
		l.scanToken()
	}

	l.begin()
	l.add(TokenEOF)

	return l.tokens
}

// HadError reports whether the last scan emitted at least one TokenError.
func (l *Lexer) HadError() bool {
	return l.hadError
}

// Scan tokenizes file in one call.
func Scan(file []byte, fileName string) ([]Token, bool) {
	l := New(file, fileName)
	tokens := l.ScanTokens()

	return tokens, l.HadError()
}

// ErrorTokens returns the TokenError entries of tokens in order, so a
// caller can report every lexical problem without re-scanning.
func ErrorTokens(tokens []Token) []Token {
	var errs []Token

	for _, t := range tokens {
		if t.Type == TokenError {
			errs = append(errs, t)
		}
	}

	return errs
}

func (l *Lexer) scanToken() {
	b := l.file[l.cur]

	switch {
	case b == ' ' || b == '\t' || b == '\r':
		l.advance()

	case b == '\n':
		l.advance()
		l.add(TokenNewline)

	case b == '#':
		l.scanComment()

	case b == '"':
		l.scanText()

	case b == '$':
		l.scanMoney()

	case b == '@':
		l.scanTime()

	case isDigit(b):
		l.scanNumber()

	case isAlpha(b):
		l.scanWord()

	case b == '=':
		l.advance()
		if l.match('=') {
			l.add(TokenEqual)
		} else {
			l.add(TokenAssign)
		}

	case b == '>':
		l.advance()
		if l.match('=') {
			l.add(TokenGreaterEqual)
		} else {
			l.add(TokenGreater)
		}

	case b == '<':
		l.advance()
		if l.match('=') {
			l.add(TokenLessEqual)
		} else {
			l.add(TokenLess)
		}

	case b == '.':
		l.advance()
		l.add(TokenDot)

	case b == '(':
		l.advance()
		l.add(TokenParenOpen)

	case b == ')':
		l.advance()
		l.add(TokenParenClose)

	default:
		r := l.advanceRune()
		l.errorToken(fmt.Sprintf("Unexpected character %q", r))
	}
}

// scanComment consumes a comment opened by a single '#'. The body runs
// until a '#' that ends its line or the buffer; everything in between is
// discarded without producing tokens. Newlines inside still advance the
// position but emit no TokenNewline.
func (l *Lexer) scanComment() {
	l.advance()
	l.add(TokenCommentStart)

	for !l.atEnd() {
		if l.file[l.cur] == '#' {
			if next, ok := l.peekAt(1); !ok || next == '\n' || next == '\r' {
				l.begin()
				l.advance()
				l.add(TokenCommentEnd)
				return
			}
		}

		l.advanceRune()
	}

	l.errorTokenAt("Unterminated comment", l.here())
}

// scanText consumes a quoted literal. The lexeme keeps the surrounding
// quotes and any backslashes exactly as written; \" is the only escape and
// raw newlines are part of the literal.
func (l *Lexer) scanText() {
	l.advance()

	for !l.atEnd() {
		switch l.file[l.cur] {
		case '"':
			l.advance()
			l.add(TokenText)
			return

		case '\\':
			l.advance()
			if next, ok := l.peek(); ok && next == '"' {
				l.advance()
			}

		default:
			l.advanceRune()
		}
	}

	l.errorToken("Unterminated string")
}

// scanNumber consumes digits with optional '_' separators and at most one
// decimal point followed by at least one digit. A trailing '.' without a
// digit after it is left for the next dispatch.
func (l *Lexer) scanNumber() {
	l.digits()

	if l.byteAt(0, '.') {
		if next, ok := l.peekAt(1); ok && isDigit(next) {
			l.advance()
			l.digits()
		}
	}

	l.add(TokenNumber)
}

// digits consumes a run of digits where '_' counts only between digits.
func (l *Lexer) digits() {
	for {
		b, ok := l.peek()
		if !ok {
			return
		}

		if b == '_' {
			if next, ok := l.peekAt(1); !ok || !isDigit(next) {
				return
			}
			l.advance()
			continue
		}

		if !isDigit(b) {
			return
		}

		l.advance()
	}
}

// scanMoney consumes '$' followed by digits with ',' group separators, an
// optional cents part, and an optional uppercase currency code. A '$' with
// no digit after it is an error consuming only the '$'.
func (l *Lexer) scanMoney() {
	l.advance()

	if b, ok := l.peek(); !ok || !isDigit(b) {
		l.errorToken("Unexpected character '$'")
		return
	}

	for {
		b, ok := l.peek()
		if !ok {
			break
		}

		if b == ',' {
			if next, ok := l.peekAt(1); !ok || !isDigit(next) {
				break
			}
			l.advance()
			continue
		}

		if !isDigit(b) {
			break
		}

		l.advance()
	}

	if l.byteAt(0, '.') {
		if next, ok := l.peekAt(1); ok && isDigit(next) {
			l.advance()
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}

	for {
		b, ok := l.peek()
		if !ok || b < 'A' || b > 'Z' {
			break
		}
		l.advance()
	}

	l.add(TokenMoney)
}

// scanTime consumes '@' followed by one of three shapes, longest first:
// date 'T' clock, date only, or clock only. Shape is checked by lookahead
// before anything past the '@' is consumed, so a '@' with no valid shape
// is an error consuming only the '@'.
func (l *Lexer) scanTime() {
	l.advance()

	n := l.timeShapeLen()
	if n == 0 {
		l.errorToken("Unexpected character '@'")
		return
	}

	for i := 0; i < n; i++ {
		l.advance()
	}

	l.add(TokenTime)
}

func (l *Lexer) timeShapeLen() int {
	if d := l.dateLen(); d > 0 {
		if l.byteAt(d, 'T') {
			if c := l.clockLenAt(d + 1); c > 0 {
				return d + 1 + c
			}
		}
		return d
	}

	return l.clockLenAt(0)
}

// dateLen matches YYYY-MM-DD at the cursor.
func (l *Lexer) dateLen() int {
	if !l.digitsAt(0, 4) || !l.byteAt(4, '-') || !l.digitsAt(5, 2) || !l.byteAt(7, '-') || !l.digitsAt(8, 2) {
		return 0
	}

	return 10
}

// clockLenAt matches HH:MM with an optional :SS at offset n.
func (l *Lexer) clockLenAt(n int) int {
	if !l.digitsAt(n, 2) || !l.byteAt(n+2, ':') || !l.digitsAt(n+3, 2) {
		return 0
	}

	if l.byteAt(n+5, ':') && l.digitsAt(n+6, 2) {
		return 8
	}

	return 5
}

// scanWord consumes a bare word and classifies it against the keyword
// table. Keywords match whole words only, so "iffy" stays a single text
// token.
func (l *Lexer) scanWord() {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNumeric(b) {
			break
		}
		l.advance()
	}

	if t, ok := keywords[string(l.file[l.start:l.cur])]; ok {
		l.add(t)
		return
	}

	l.add(TokenText)
}

func (l *Lexer) atEnd() bool {
	return l.cur >= len(l.file)
}

func (l *Lexer) here() Location {
	return Location{
		File:   l.fileName,
		Line:   l.line,
		Column: l.col,
	}
}

// begin marks the next token as starting at the current position.
func (l *Lexer) begin() {
	l.start = l.cur
	l.startLoc = l.here()
}

// advance consumes the current byte.
func (l *Lexer) advance() byte {
	b := l.file[l.cur]
	l.cur++

	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return b
}

// advanceRune consumes one UTF-8 sequence, counting it as a single column.
func (l *Lexer) advanceRune() rune {
	r, size := utf8.DecodeRune(l.file[l.cur:])
	l.cur += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *Lexer) peek() (byte, bool) {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) (byte, bool) {
	if l.cur+n >= len(l.file) {
		return 0, false
	}

	return l.file[l.cur+n], true
}

// match consumes the current byte only if it equals b.
func (l *Lexer) match(b byte) bool {
	if c, ok := l.peek(); ok && c == b {
		l.advance()
		return true
	}

	return false
}

func (l *Lexer) byteAt(n int, b byte) bool {
	c, ok := l.peekAt(n)
	return ok && c == b
}

func (l *Lexer) digitsAt(n, count int) bool {
	for i := 0; i < count; i++ {
		b, ok := l.peekAt(n + i)
		if !ok || !isDigit(b) {
			return false
		}
	}

	return true
}

// add emits a token whose lexeme is everything consumed since begin.
func (l *Lexer) add(t TokenType) {
	l.tokens = append(l.tokens, Token{
		Type:   t,
		Lexeme: string(l.file[l.start:l.cur]),
		Start:  l.startLoc,
	})
}

// errorToken emits a TokenError carrying msg at the token start and lets
// the scan continue.
func (l *Lexer) errorToken(msg string) {
	l.errorTokenAt(msg, l.startLoc)
}

func (l *Lexer) errorTokenAt(msg string, at Location) {
	l.hadError = true
	l.tokens = append(l.tokens, Token{
		Type:   TokenError,
		Lexeme: msg,
		Start:  at,
	})
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isAlphaNumeric(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

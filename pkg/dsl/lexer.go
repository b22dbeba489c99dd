package dsl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer turns DSL source into tokens one at a time.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

// next returns the next significant token. After EOF it keeps returning EOF.
// Lexical failures are reported as an Invalid token and a *SyntaxError.
func (lx *lexer) next() (Token, error) {
	lx.skipSpace()
	start := lx.pos()
	if lx.off >= len(lx.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	r, _ := lx.peek()
	switch {
	case r == '(':
		return lx.single(LParen), nil
	case r == ')':
		return lx.single(RParen), nil
	case r == ':':
		return lx.single(Colon), nil
	case r == ',':
		return lx.single(Comma), nil
	case r == '|':
		return lx.single(Pipe), nil
	case r == '"':
		return lx.scanString()
	case r == '-' || r == '+' || r == '.' || isDigit(r):
		return lx.scanNumber()
	case isIdentStart(r):
		return lx.scanIdent(), nil
	}

	lx.advance()
	tok := Token{Kind: Invalid, Text: string(r), Pos: start}
	return tok, &SyntaxError{Pos: start, Token: tok.Text, Msg: "unexpected character"}
}

func (lx *lexer) pos() Pos { return Pos{Offset: lx.off, Line: lx.line, Col: lx.col} }

func (lx *lexer) peek() (rune, int) {
	if lx.off >= len(lx.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(lx.src[lx.off:])
}

func (lx *lexer) advance() rune {
	r, w := lx.peek()
	if w == 0 {
		return 0
	}
	lx.off += w
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) skipSpace() {
	for {
		r, w := lx.peek()
		if w == 0 || !unicode.IsSpace(r) {
			return
		}
		lx.advance()
	}
}

func (lx *lexer) single(k Kind) Token {
	p := lx.pos()
	r := lx.advance()
	return Token{Kind: k, Text: string(r), Pos: p}
}

func (lx *lexer) scanIdent() Token {
	p := lx.pos()
	for {
		r, w := lx.peek()
		if w == 0 || !isIdentContinue(r) {
			break
		}
		lx.advance()
	}
	return Token{Kind: Ident, Text: lx.src[p.Offset:lx.off], Pos: p}
}

func (lx *lexer) scanNumber() (Token, error) {
	p := lx.pos()
	if r, _ := lx.peek(); r == '-' || r == '+' {
		lx.advance()
	}
	digits := 0
	for {
		r, _ := lx.peek()
		if !isDigit(r) {
			break
		}
		lx.advance()
		digits++
	}
	if r, _ := lx.peek(); r == '.' {
		lx.advance()
		for {
			r, _ := lx.peek()
			if !isDigit(r) {
				break
			}
			lx.advance()
			digits++
		}
	}
	if digits == 0 {
		text := lx.src[p.Offset:lx.off]
		return Token{Kind: Invalid, Text: text, Pos: p}, &SyntaxError{Pos: p, Token: text, Msg: "malformed number"}
	}
	if r, _ := lx.peek(); r == 'e' || r == 'E' {
		lx.advance()
		if r, _ := lx.peek(); r == '-' || r == '+' {
			lx.advance()
		}
		exp := 0
		for {
			r, _ := lx.peek()
			if !isDigit(r) {
				break
			}
			lx.advance()
			exp++
		}
		if exp == 0 {
			text := lx.src[p.Offset:lx.off]
			return Token{Kind: Invalid, Text: text, Pos: p}, &SyntaxError{Pos: p, Token: text, Msg: "malformed exponent"}
		}
	}
	// 12abc is a single bad token, not a number followed by an identifier
	if r, w := lx.peek(); w > 0 && isIdentContinue(r) {
		for {
			r, w := lx.peek()
			if w == 0 || !isIdentContinue(r) {
				break
			}
			lx.advance()
		}
		text := lx.src[p.Offset:lx.off]
		return Token{Kind: Invalid, Text: text, Pos: p}, &SyntaxError{Pos: p, Token: text, Msg: "malformed number"}
	}
	return Token{Kind: Number, Text: lx.src[p.Offset:lx.off], Pos: p}, nil
}

func (lx *lexer) scanString() (Token, error) {
	p := lx.pos()
	lx.advance() // opening quote
	var b strings.Builder
	for {
		r, w := lx.peek()
		switch {
		case w == 0:
			return Token{Kind: Invalid, Text: lx.src[p.Offset:], Pos: p},
				&SyntaxError{Pos: p, Token: lx.src[p.Offset:], Msg: "unterminated string"}
		case r == '"':
			lx.advance()
			return Token{Kind: String, Text: b.String(), Pos: p}, nil
		case r == '\\':
			lx.advance()
			esc, w := lx.peek()
			if w == 0 {
				continue
			}
			lx.advance()
			switch esc {
			case '"', '\\':
				b.WriteRune(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				return Token{Kind: Invalid, Text: "\\" + string(esc), Pos: p},
					&SyntaxError{Pos: p, Token: "\\" + string(esc), Msg: "unknown escape sequence"}
			}
		default:
			b.WriteRune(lx.advance())
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

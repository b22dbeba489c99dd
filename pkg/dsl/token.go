package dsl

import "fmt"

// Kind represents the category of a DSL token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the input.
	EOF

	Ident  // bareword: aes, line, quarter, ...
	String // "double quoted"
	Number // 12, -0.5, 1e3

	LParen // (
	RParen // )
	Colon  // :
	Comma  // ,
	Pipe   // |
)

var kindNames = [...]string{
	Invalid: "invalid token",
	EOF:     "end of input",
	Ident:   "identifier",
	String:  "string",
	Number:  "number",
	LParen:  "'('",
	RParen:  "')'",
	Colon:   "':'",
	Comma:   "','",
	Pipe:    "'|'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Pos is a position in the DSL source. Offset is a byte offset; Line and Col
// are 1-based, with Col counted in runes.
type Pos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Col    int `json:"col"`
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Token is a lexed unit of DSL source.
type Token struct {
	Kind Kind
	Text string // raw source text; for strings, the unquoted value
	Pos  Pos
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("%q", t.Text)
	default:
		return t.Text
	}
}

package dsl

import (
	"math"
	"strconv"
	"strings"

	"github.com/williamcotton/gramgraph/pkg/palette"
)

// value is a parsed argument value.
type value struct {
	tok  Token   // Ident, String or Number
	num  float64 // set when tok.Kind == Number
	some bool    // written as Some(n)
}

// arg is one `name: value` pair.
type arg struct {
	name Token
	val  value
}

type parser struct {
	lx  *lexer
	tok Token
}

// Parse parses DSL source into a PlotSpec.
//
// The accepted grammar is
//
//	spec       := [ 'df' '|' ] [ aes_call '|' ] layer_call ( '|' layer_call )* [ '|' facet_call ]
//	aes_call   := 'aes' '(' named_args ')'
//	layer_call := ( 'line' | 'point' | 'bar' ) '(' named_args ')'
//	facet_call := 'facet_wrap' '(' named_args ')'
//	named_args := ( ident ':' value ( ',' ident ':' value )* [ ',' ] )?
//	value      := string | number | bareword | 'Some' '(' number ')'
//
// Named arguments may appear in any order. Unknown layers, unknown or
// duplicate arguments and ill-typed values are reported as *SyntaxError
// positioned at the offending token.
func Parse(src string) (*PlotSpec, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseSpec()
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	p.tok = tok
	return err
}

func (p *parser) expect(k Kind) (Token, error) {
	tok := p.tok
	if tok.Kind != k {
		return tok, errorf(tok, "expected %s, found %s", k, describe(tok))
	}
	return tok, p.advance()
}

func describe(tok Token) string {
	switch tok.Kind {
	case EOF:
		return "end of input"
	case Ident, Number, String:
		return tok.Kind.String() + " " + tok.String()
	default:
		return tok.Kind.String()
	}
}

func (p *parser) parseSpec() (*PlotSpec, error) {
	spec := &PlotSpec{}
	if p.tok.Kind == EOF {
		return nil, errorf(p.tok, "empty spec: expected a layer such as line(), point() or bar()")
	}

	if p.tok.Kind == Ident && p.tok.Text == "df" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(Pipe); err != nil {
			return nil, err
		}
	}

	for stage := 0; ; stage++ {
		name := p.tok
		if name.Kind != Ident {
			return nil, errorf(name, "expected aes(), line(), point(), bar() or facet_wrap(), found %s", describe(name))
		}
		if err := p.parseStage(spec, name, stage); err != nil {
			return nil, err
		}

		if p.tok.Kind == EOF {
			break
		}
		if p.tok.Kind != Pipe {
			return nil, errorf(p.tok, "expected '|' or end of input, found %s", describe(p.tok))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if spec.Facet != nil {
			return nil, errorf(p.tok, "facet_wrap must be the last stage")
		}
	}

	if len(spec.Layers) == 0 {
		return nil, errorf(p.tok, "expected at least one layer: line(), point() or bar()")
	}
	return spec, nil
}

func (p *parser) parseStage(spec *PlotSpec, name Token, stage int) error {
	switch name.Text {
	case "aes", "line", "point", "bar", "facet_wrap":
	default:
		return errorf(name, "unknown layer %q (want aes, line, point, bar or facet_wrap)", name.Text)
	}

	if err := p.advance(); err != nil {
		return err
	}
	args, err := p.parseArgs()
	if err != nil {
		return err
	}
	if err := checkSome(name, args); err != nil {
		return err
	}

	switch name.Text {
	case "aes":
		if stage != 0 {
			return errorf(name, "aes() must come before every layer")
		}
		a, err := bindAes(name, args)
		if err != nil {
			return err
		}
		spec.Aes = &a
	case "line":
		l, err := bindLine(name, args)
		if err != nil {
			return err
		}
		spec.Layers = append(spec.Layers, l)
	case "point":
		l, err := bindPoint(name, args)
		if err != nil {
			return err
		}
		spec.Layers = append(spec.Layers, l)
	case "bar":
		l, err := bindBar(name, args)
		if err != nil {
			return err
		}
		spec.Layers = append(spec.Layers, l)
	case "facet_wrap":
		if len(spec.Layers) == 0 {
			return errorf(name, "facet_wrap() needs at least one layer before it")
		}
		f, err := bindFacet(name, args)
		if err != nil {
			return err
		}
		spec.Facet = f
	}
	return nil
}

func (p *parser) parseArgs() ([]arg, error) {
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}

	var args []arg
	seen := make(map[string]bool)
	for p.tok.Kind != RParen {
		name := p.tok
		if name.Kind != Ident {
			return nil, errorf(name, "expected argument name or ')', found %s", describe(name))
		}
		if seen[name.Text] {
			return nil, errorf(name, "duplicate argument %q", name.Text)
		}
		seen[name.Text] = true
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(Colon); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, arg{name: name, val: v})

		if p.tok.Kind == Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.Kind != RParen {
			return nil, errorf(p.tok, "expected ',' or ')', found %s", describe(p.tok))
		}
	}
	return args, p.advance()
}

func (p *parser) parseValue() (value, error) {
	tok := p.tok
	switch tok.Kind {
	case String:
		return value{tok: tok}, p.advance()
	case Number:
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil || math.IsInf(n, 0) {
			return value{}, errorf(tok, "number out of range")
		}
		return value{tok: tok, num: n}, p.advance()
	case Ident:
		if err := p.advance(); err != nil {
			return value{}, err
		}
		if tok.Text != "Some" || p.tok.Kind != LParen {
			return value{tok: tok}, nil
		}
		// Some(n) is only valid for ncol; see checkSome.
		if err := p.advance(); err != nil {
			return value{}, err
		}
		inner := p.tok
		if inner.Kind != Number {
			return value{}, errorf(inner, "expected number inside Some(...), found %s", describe(inner))
		}
		v, err := p.parseValue()
		if err != nil {
			return value{}, err
		}
		if _, err := p.expect(RParen); err != nil {
			return value{}, err
		}
		v.some = true
		return v, nil
	}
	return value{}, errorf(tok, "expected string, number or column name, found %s", describe(tok))
}

// =============================================================================
// Argument binding
// =============================================================================

// checkSome rejects Some(n) everywhere except facet_wrap's ncol.
func checkSome(call Token, args []arg) error {
	for _, a := range args {
		if a.val.some && (call.Text != "facet_wrap" || a.name.Text != "ncol") {
			return errorf(a.name, "%s: Some(...) is only allowed for facet_wrap ncol", a.name.Text)
		}
	}
	return nil
}

func unknownArg(call Token, a arg, allowed string) error {
	return errorf(a.name, "unknown argument %q for %s() (want %s)", a.name.Text, call.Text, allowed)
}

func column(a arg) (string, error) {
	switch a.val.tok.Kind {
	case Ident, String:
		if strings.TrimSpace(a.val.tok.Text) == "" {
			return "", errorf(a.val.tok, "%s: column name cannot be empty", a.name.Text)
		}
		return a.val.tok.Text, nil
	}
	return "", errorf(a.val.tok, "%s: expected a column name, found %s", a.name.Text, describe(a.val.tok))
}

// colorArg returns either a normalized literal color (string value) or a
// mapped column (bareword).
func colorArg(a arg) (literal, col string, err error) {
	switch a.val.tok.Kind {
	case String:
		c, err := palette.ParseColor(a.val.tok.Text)
		if err != nil {
			return "", "", errorf(a.val.tok, "color: %v", err)
		}
		return c, "", nil
	case Ident:
		return "", a.val.tok.Text, nil
	}
	return "", "", errorf(a.val.tok, "color: expected a color string or a column name, found %s", describe(a.val.tok))
}

func shapeArg(a arg) (literal, col string, err error) {
	switch a.val.tok.Kind {
	case String:
		s, err := palette.ParseShape(a.val.tok.Text)
		if err != nil {
			return "", "", errorf(a.val.tok, "shape: %v", err)
		}
		return string(s), "", nil
	case Ident:
		return "", a.val.tok.Text, nil
	}
	return "", "", errorf(a.val.tok, "shape: expected a shape string or a column name, found %s", describe(a.val.tok))
}

// numberArg returns either a literal (number value) or a mapped column (bareword).
func numberArg(a arg) (literal *float64, col string, err error) {
	switch a.val.tok.Kind {
	case Number:
		n := a.val.num
		if n < 0 {
			return nil, "", errorf(a.val.tok, "%s must not be negative", a.name.Text)
		}
		return &n, "", nil
	case Ident:
		return nil, a.val.tok.Text, nil
	}
	return nil, "", errorf(a.val.tok, "%s: expected a number or a column name, found %s", a.name.Text, describe(a.val.tok))
}

func alphaArg(a arg) (*float64, string, error) {
	lit, col, err := numberArg(a)
	if err == nil && lit != nil && *lit > 1 {
		return nil, "", errorf(a.val.tok, "alpha must be between 0 and 1")
	}
	return lit, col, err
}

func bindAes(call Token, args []arg) (Aesthetics, error) {
	var aes Aesthetics
	for _, a := range args {
		var dst *string
		switch a.name.Text {
		case "x":
			dst = &aes.X
		case "y":
			dst = &aes.Y
		case "color":
			dst = &aes.Color
		case "size":
			dst = &aes.Size
		case "shape":
			dst = &aes.Shape
		case "alpha":
			dst = &aes.Alpha
		default:
			return aes, unknownArg(call, a, "x, y, color, size, shape or alpha")
		}
		col, err := column(a)
		if err != nil {
			return aes, err
		}
		*dst = col
	}
	return aes, nil
}

func bindXY(aes *Aesthetics, a arg) (bool, error) {
	switch a.name.Text {
	case "x", "y":
	default:
		return false, nil
	}
	col, err := column(a)
	if err != nil {
		return true, err
	}
	if a.name.Text == "x" {
		aes.X = col
	} else {
		aes.Y = col
	}
	return true, nil
}

func bindLine(call Token, args []arg) (*LineLayer, error) {
	l := &LineLayer{At: call.Pos}
	for _, a := range args {
		if ok, err := bindXY(&l.Mapping, a); ok {
			if err != nil {
				return nil, err
			}
			continue
		}
		var err error
		switch a.name.Text {
		case "color":
			l.Color, l.Mapping.Color, err = colorArg(a)
		case "width":
			l.Width, l.Mapping.Size, err = numberArg(a)
		case "alpha":
			l.Alpha, l.Mapping.Alpha, err = alphaArg(a)
		default:
			err = unknownArg(call, a, "x, y, color, width or alpha")
		}
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func bindPoint(call Token, args []arg) (*PointLayer, error) {
	l := &PointLayer{At: call.Pos}
	for _, a := range args {
		if ok, err := bindXY(&l.Mapping, a); ok {
			if err != nil {
				return nil, err
			}
			continue
		}
		var err error
		switch a.name.Text {
		case "color":
			l.Color, l.Mapping.Color, err = colorArg(a)
		case "size":
			l.Size, l.Mapping.Size, err = numberArg(a)
		case "shape":
			l.Shape, l.Mapping.Shape, err = shapeArg(a)
		case "alpha":
			l.Alpha, l.Mapping.Alpha, err = alphaArg(a)
		default:
			err = unknownArg(call, a, "x, y, color, size, shape or alpha")
		}
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func bindBar(call Token, args []arg) (*BarLayer, error) {
	l := &BarLayer{At: call.Pos, Position: PositionIdentity}
	for _, a := range args {
		if ok, err := bindXY(&l.Mapping, a); ok {
			if err != nil {
				return nil, err
			}
			continue
		}
		var err error
		switch a.name.Text {
		case "color":
			l.Color, l.Mapping.Color, err = colorArg(a)
		case "alpha":
			l.Alpha, l.Mapping.Alpha, err = alphaArg(a)
		case "width":
			if a.val.tok.Kind != Number || a.val.num <= 0 || a.val.num > 1 {
				return nil, errorf(a.val.tok, "width: bar width must be a number in (0, 1]")
			}
			w := a.val.num
			l.Width = &w
		case "position":
			l.Position, err = positionArg(a)
		default:
			err = unknownArg(call, a, "x, y, color, alpha, width or position")
		}
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func positionArg(a arg) (Position, error) {
	if a.val.tok.Kind == String || a.val.tok.Kind == Ident {
		switch pos := Position(a.val.tok.Text); pos {
		case PositionIdentity, PositionStack, PositionDodge:
			return pos, nil
		}
	}
	return "", errorf(a.val.tok, "position: expected \"identity\", \"stack\" or \"dodge\", found %s", describe(a.val.tok))
}

func bindFacet(call Token, args []arg) (*FacetSpec, error) {
	f := &FacetSpec{Scales: ScalesFixed}
	for _, a := range args {
		switch a.name.Text {
		case "by":
			col, err := column(a)
			if err != nil {
				return nil, err
			}
			f.By = col
		case "ncol":
			n := a.val.num
			if a.val.tok.Kind != Number || n < 1 || n != math.Trunc(n) || n > math.MaxInt32 {
				return nil, errorf(a.val.tok, "ncol: expected a positive integer, found %s", describe(a.val.tok))
			}
			f.NCol = int(n)
		case "scales":
			mode := ScaleMode(a.val.tok.Text)
			switch {
			case a.val.tok.Kind != String && a.val.tok.Kind != Ident:
			case mode == ScalesFixed, mode == ScalesFree, mode == ScalesFreeX, mode == ScalesFreeY:
				f.Scales = mode
				continue
			}
			return nil, errorf(a.val.tok, "scales: expected \"fixed\", \"free\", \"free_x\" or \"free_y\", found %s", describe(a.val.tok))
		default:
			return nil, unknownArg(call, a, "by, ncol or scales")
		}
	}
	if f.By == "" {
		return nil, errorf(call, "facet_wrap() requires a 'by' column")
	}
	return f, nil
}

package dsl

import (
	"fmt"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

// SyntaxError reports malformed DSL input at the offending token.
type SyntaxError struct {
	Pos   Pos    // position of the offending token
	Token string // offending token text, empty at end of input
	Msg   string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s at %s: %s", gerrors.ErrCodeSyntax, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s at %s near %q: %s", gerrors.ErrCodeSyntax, e.Pos, e.Token, e.Msg)
}

// Code returns the error code for this error type.
func (e *SyntaxError) Code() gerrors.Code {
	return gerrors.ErrCodeSyntax
}

func errorf(tok Token, format string, args ...any) *SyntaxError {
	text := tok.Text
	if tok.Kind == EOF {
		text = ""
	}
	return &SyntaxError{Pos: tok.Pos, Token: text, Msg: fmt.Sprintf(format, args...)}
}

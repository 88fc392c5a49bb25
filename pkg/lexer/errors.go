package lexer

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedChar = errors.New("unexpected character")
	ErrUnterminated   = errors.New("unterminated literal")
)

// UnexpectedCharError is raised for a character no rule matches. The
// character is skipped and scanning goes on.
type UnexpectedCharError struct {
	Char   rune
	Line   int
	Column int
}

func (e *UnexpectedCharError) Error() string {
	return fmt.Sprintf("Unexpected character %s at line %d", quoteChar(e.Char), e.Line)
}

func (e *UnexpectedCharError) Unwrap() error { return ErrUnexpectedChar }

// UnterminatedError is raised once for a comment or string that never closes
// when the unterminated feature is enabled. Scanning resumes at end of input.
type UnterminatedError struct {
	What   string
	Line   int
	Column int
}

func (e *UnterminatedError) Error() string {
	return fmt.Sprintf("Unterminated %s starting at line %d", e.What, e.Line)
}

func (e *UnterminatedError) Unwrap() error { return ErrUnterminated }

func quoteChar(ch rune) string {
	switch ch {
	case '\n', '\r', '\t':
		return fmt.Sprintf("%q", ch)
	}
	return fmt.Sprintf("'%c'", ch)
}

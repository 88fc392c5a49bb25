// Package report renders the output of a lexer run: the token stream, the
// symbol tables and a JSON dump used by the golden tests.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/xplshn/clex/pkg/lexer"
	"github.com/xplshn/clex/pkg/symtab"
	"github.com/xplshn/clex/pkg/token"
)

type Style int

const (
	StyleTags Style = iota
	StyleTable
	StyleNone
)

func ParseStyle(name string) (Style, error) {
	switch name {
	case "tags":
		return StyleTags, nil
	case "table":
		return StyleTable, nil
	case "none":
		return StyleNone, nil
	}
	return 0, fmt.Errorf("unknown token style '%s'. Supported: 'tags', 'table', 'none'", name)
}

// WriteTokens prints one token per line.
func WriteTokens(w io.Writer, toks []token.Token, style Style) error {
	for _, tok := range toks {
		var err error
		switch style {
		case StyleTags:
			_, err = fmt.Fprintln(w, tok.Tag())
		case StyleTable:
			_, err = fmt.Fprintf(w, "%4d:%-3d %-14s %s\n", tok.Line, tok.Column, tok.Kind, tok.Value)
		case StyleNone:
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteTables prints each table under a "<Name> Table:" heading, entries in
// insertion order.
func WriteTables(w io.Writer, tables ...*symtab.Table) error {
	for _, t := range tables {
		if _, err := fmt.Fprintf(w, "\n%s Table:\n", t.Name()); err != nil {
			return err
		}
		for _, e := range t.Entries() {
			if _, err := fmt.Fprintf(w, "%s: %d\n", e.Key, e.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

type TokenRecord struct {
	Kind   token.Kind `json:"kind"`
	Value  string     `json:"value"`
	Line   int        `json:"line"`
	Column int        `json:"column"`
}

type Dump struct {
	File        string         `json:"file,omitempty"`
	SourceHash  string         `json:"source_hash"`
	Profile     string         `json:"profile,omitempty"`
	Tokens      []TokenRecord  `json:"tokens"`
	Reserved    []symtab.Entry `json:"reserved"`
	Identifiers []symtab.Entry `json:"identifiers"`
	Literals    []symtab.Entry `json:"literals"`
	Errors      []string       `json:"errors,omitempty"`
}

// HashSource returns the hex xxhash of a source text.
func HashSource(src string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(src))
}

// NewDump captures a finished run of l over src.
func NewDump(src string, toks []token.Token, errs []error, l *lexer.Lexer) Dump {
	d := Dump{
		SourceHash:  HashSource(src),
		Tokens:      make([]TokenRecord, len(toks)),
		Reserved:    l.Reserved().Entries(),
		Identifiers: l.Identifiers().Entries(),
		Literals:    l.Literals().Entries(),
	}
	for i, tok := range toks {
		d.Tokens[i] = TokenRecord{Kind: tok.Kind, Value: tok.Value, Line: tok.Line, Column: tok.Column}
	}
	for _, err := range errs {
		d.Errors = append(d.Errors, err.Error())
	}
	return d
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

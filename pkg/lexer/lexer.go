package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"github.com/xplshn/clex/pkg/config"
	"github.com/xplshn/clex/pkg/symtab"
	"github.com/xplshn/clex/pkg/token"
)

// Reporter receives diagnostics as they are found. *util.Reporter implements it.
type Reporter interface {
	Error(tok token.Token, format string, args ...any)
	Warn(wt config.Warning, tok token.Token, format string, args ...any)
}

// Lexer turns one source string at a time into tokens and owns the three
// symbol tables it fills while doing so. A Lexer is not safe for concurrent
// use; tokenize independent sources with independent Lexers.
type Lexer struct {
	// FileIndex is copied into every token and diagnostic.
	FileIndex int

	cfg      *config.Config
	reporter Reporter
	rules    *ruleSet

	reserved *symtab.Table
	idents   *symtab.Table
	literals *symtab.Table

	source string
	pos    int
	line   int
	col    int // rune column of pos, 1-based
	scan   plexer.Lexer
	done   bool
	errs   []error
}

// NewLexer builds a Lexer for cfg. rep may be nil, in which case diagnostics
// are only collected.
func NewLexer(cfg *config.Config, rep Reporter) *Lexer {
	rs, err := compileRules(Rules(cfg))
	if err != nil {
		// The patterns are constants; failing here is a programming error.
		panic(fmt.Sprintf("lexer: invalid rule set: %v", err))
	}

	seed := make([]symtab.Entry, len(token.ReservedWords))
	for i, kw := range token.ReservedWords {
		seed[i] = symtab.Entry{Key: kw.Word, Value: kw.Code}
	}

	l := &Lexer{
		cfg:      cfg,
		reporter: rep,
		rules:    rs,
		reserved: symtab.NewSeeded("Reserved Words", seed),
		idents:   symtab.New("Identifiers"),
		literals: symtab.New("Literals"),
	}
	l.Start("")
	return l
}

func (l *Lexer) Reserved() *symtab.Table    { return l.reserved }
func (l *Lexer) Identifiers() *symtab.Table { return l.idents }
func (l *Lexer) Literals() *symtab.Table    { return l.literals }

// Rules returns the ordered rule list in effect.
func (l *Lexer) Rules() []Rule { return l.rules.rules }

// Start resets the scan position to the beginning of source. The symbol
// tables keep what earlier runs put in them.
func (l *Lexer) Start(source string) {
	l.source = source
	l.pos, l.line, l.col = 0, 1, 1
	l.scan = nil
	l.done = false
	l.errs = nil
}

// Errors returns the recoverable errors raised since the last Start.
func (l *Lexer) Errors() []error { return l.errs }

// Tokenize scans source to the end. The result always ends with exactly one
// EOF token; the errors are the characters that had to be skipped.
func (l *Lexer) Tokenize(source string) ([]token.Token, []error) {
	l.Start(source)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, l.errs
}

// Next returns the next token. Once the input is exhausted it keeps
// returning the EOF token.
func (l *Lexer) Next() token.Token {
	for {
		if l.done || l.pos >= len(l.source) {
			l.done = true
			tok := l.makeToken(token.EOF, "EOF", l.line, l.col)
			tok.Len = 0
			return tok
		}

		if l.scan == nil {
			scan, err := l.rules.def.LexString("", l.source[l.pos:])
			if err != nil {
				l.skipChar()
				continue
			}
			l.scan = scan
		}

		ptok, err := l.scan.Next()
		if err != nil {
			// No rule matches here. The participle lexer cannot resume past
			// the failure, so it is rebuilt after the skip.
			l.scan = nil
			if rule, ok := l.unterminatedAt(len(l.rules.rules)); ok {
				l.unterminated(rule)
			} else {
				l.skipChar()
			}
			continue
		}
		if ptok.Type == plexer.EOF {
			l.done = true
			continue
		}

		idx := l.rules.index[ptok.Type]
		if rule, ok := l.unterminatedAt(idx); ok {
			// A later rule matched the opener of an atomic rule that could
			// not close, e.g. '/' out of an unclosed "/*".
			l.scan = nil
			l.unterminated(rule)
			continue
		}

		rule := l.rules.rules[idx]
		if rule.Hint == Invalid {
			l.skipChar()
			continue
		}
		startLine, startCol := l.line, l.col
		l.advance(len(ptok.Value))
		if rule.Hint == Ignore {
			continue
		}
		return l.classify(rule.Hint, ptok.Value, startLine, startCol)
	}
}

// classify turns a match into a token and records it in the symbol tables.
func (l *Lexer) classify(hint Hint, text string, line, col int) token.Token {
	var kind token.Kind
	switch hint {
	case Ident:
		if token.IsReserved(text) {
			kind = token.Reserved
			l.reserved.Touch(text)
		} else {
			kind = token.Ident
			l.idents.Intern(text)
		}
	case Float:
		kind = token.FloatNumber
		l.literals.Intern(text)
	case Int:
		kind = token.IntNumber
		l.literals.Intern(text)
	case String:
		kind = token.String
		l.literals.Intern(text)
	case Symbol:
		kind = token.LookupSymbol(text)
	}

	tok := l.makeToken(kind, text, line, col)
	switch {
	case kind == token.FloatNumber && strings.HasSuffix(text, "."):
		l.warn(config.WarnTrailingDot, tok, "Float literal '%s' has no digits after the decimal point", text)
	case kind == token.Symbol:
		l.warn(config.WarnGenericSymbol, tok, "Operator '%s' has no dedicated token kind", text)
	}
	return tok
}

// unterminatedAt reports whether an atomic rule declared before limit opens
// at the cursor. Reaching this point means that rule did not match.
func (l *Lexer) unterminatedAt(limit int) (Rule, bool) {
	rest := l.source[l.pos:]
	for _, r := range l.rules.rules[:limit] {
		if r.Opener != "" && strings.HasPrefix(rest, r.Opener) {
			return r, true
		}
	}
	return Rule{}, false
}

// unterminated consumes the rest of the input. With the unterminated feature
// it raises a single error; otherwise every remaining character is reported
// on its own, as the atomic pattern never matched.
func (l *Lexer) unterminated(rule Rule) {
	if !l.cfg.IsFeatureEnabled(config.FeatUnterminated) {
		for l.pos < len(l.source) {
			l.skipChar()
		}
		return
	}

	col := l.col
	err := &UnterminatedError{What: rule.What, Line: l.line, Column: col}
	l.errs = append(l.errs, err)
	if l.reporter != nil && l.cfg.IsWarningEnabled(config.WarnUnterminated) {
		tok := l.makeToken(token.EOF, rule.Opener, l.line, col)
		l.reporter.Error(tok, "Unterminated %s", rule.What)
	}
	l.advance(len(l.source) - l.pos)
}

// skipChar reports the character at the cursor and steps over it.
func (l *Lexer) skipChar() {
	ch, size := utf8.DecodeRuneInString(l.source[l.pos:])
	col := l.col
	err := &UnexpectedCharError{Char: ch, Line: l.line, Column: col}
	l.errs = append(l.errs, err)
	if l.reporter != nil && l.cfg.IsWarningEnabled(config.WarnUnexpectedChar) {
		tok := l.makeToken(token.EOF, string(ch), l.line, col)
		l.reporter.Error(tok, "Unexpected character %s", quoteChar(ch))
	}
	l.advance(size)
}

// advance moves the cursor n bytes forward, counting the newlines passed.
func (l *Lexer) advance(n int) {
	text := l.source[l.pos : l.pos+n]
	if nl := strings.Count(text, "\n"); nl > 0 {
		l.line += nl
		l.col = 1
		text = text[strings.LastIndexByte(text, '\n')+1:]
	}
	l.col += utf8.RuneCountInString(text)
	l.pos += n
}

func (l *Lexer) makeToken(kind token.Kind, value string, line, col int) token.Token {
	return token.Token{
		Kind: kind, Value: value, FileIndex: l.FileIndex,
		Line: line, Column: col, Len: utf8.RuneCountInString(value),
	}
}

func (l *Lexer) warn(wt config.Warning, tok token.Token, format string, args ...any) {
	if l.reporter != nil {
		l.reporter.Warn(wt, tok, format, args...)
	}
}

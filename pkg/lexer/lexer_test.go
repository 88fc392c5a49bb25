package lexer_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/clex/pkg/config"
	"github.com/xplshn/clex/pkg/lexer"
	"github.com/xplshn/clex/pkg/token"
)

type recorder struct {
	errors   []string
	warnings []config.Warning
}

func (r *recorder) Error(tok token.Token, format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf("%d:%d: ", tok.Line, tok.Column)+fmt.Sprintf(format, args...))
}

func (r *recorder) Warn(wt config.Warning, tok token.Token, format string, args ...any) {
	r.warnings = append(r.warnings, wt)
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func tokenize(t *testing.T, src string) ([]token.Token, []error, *lexer.Lexer) {
	t.Helper()
	l := lexer.NewLexer(config.NewConfig(), nil)
	toks, errs := l.Tokenize(src)
	return toks, errs, l
}

func TestTokenizeStatement(t *testing.T) {
	toks, errs, l := tokenize(t, "if (x1 <= 32) { b = 10; }")
	require.Empty(t, errs)

	expected := []struct {
		kind  token.Kind
		value string
	}{
		{token.Reserved, "if"},
		{token.LParen, "("},
		{token.Ident, "x1"},
		{token.Lte, "<="},
		{token.IntNumber, "32"},
		{token.RParen, ")"},
		{token.LBrace, "{"},
		{token.Ident, "b"},
		{token.Assign, "="},
		{token.IntNumber, "10"},
		{token.Semi, ";"},
		{token.RBrace, "}"},
		{token.EOF, "EOF"},
	}
	require.Len(t, toks, len(expected))
	for i, tt := range expected {
		require.Equal(t, tt.kind, toks[i].Kind, "test[%d] - wrong kind", i)
		require.Equal(t, tt.value, toks[i].Value, "test[%d] - wrong value", i)
		require.Equal(t, 1, toks[i].Line, "test[%d] - wrong line", i)
	}

	require.Equal(t, map[string]int{"x1": 1, "b": 2}, l.Identifiers().Map())
	require.Equal(t, map[string]int{"32": 1, "10": 2}, l.Literals().Map())
	require.Equal(t, 8, l.Reserved().Len())
}

func TestFloatBeforeInt(t *testing.T) {
	toks, errs, l := tokenize(t, "3.14 + 2")
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{token.FloatNumber, token.Plus, token.IntNumber, token.EOF}, kinds(toks))
	require.Equal(t, "3.14", toks[0].Value)
	require.Equal(t, map[string]int{"3.14": 1, "2": 2}, l.Literals().Map())
}

func TestTrailingDotFloat(t *testing.T) {
	toks, errs, l := tokenize(t, "3. 3.14 .5")
	require.Len(t, errs, 1, "a leading '.' is not part of any rule")
	require.Equal(t, []token.Kind{token.FloatNumber, token.FloatNumber, token.IntNumber, token.EOF}, kinds(toks))
	require.Equal(t, "3.", toks[0].Value)
	require.Equal(t, "5", toks[2].Value)
	require.Equal(t, map[string]int{"3.": 1, "3.14": 2, "5": 3}, l.Literals().Map())
}

func TestUnterminatedBlockComment(t *testing.T) {
	src := "/* never closes"
	toks, errs, _ := tokenize(t, src)
	require.Equal(t, []token.Kind{token.EOF}, kinds(toks))
	require.Len(t, errs, len(src))

	for i, err := range errs {
		var ue *lexer.UnexpectedCharError
		require.ErrorAs(t, err, &ue)
		require.Equal(t, rune(src[i]), ue.Char)
		require.Equal(t, 1, ue.Line)
		require.Equal(t, i+1, ue.Column)
	}
}

func TestUnexpectedChar(t *testing.T) {
	toks, errs, _ := tokenize(t, "#")
	require.Equal(t, []token.Kind{token.EOF}, kinds(toks))
	require.Equal(t, 1, toks[0].Line)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], lexer.ErrUnexpectedChar)
	require.EqualError(t, errs[0], "Unexpected character '#' at line 1")
}

func TestRecoversAfterUnexpectedChar(t *testing.T) {
	toks, errs, l := tokenize(t, "a # b\n@c")
	require.Equal(t, []token.Kind{token.Ident, token.Ident, token.Ident, token.EOF}, kinds(toks))
	require.Equal(t, 2, toks[2].Line)
	require.Equal(t, 2, toks[2].Column)
	require.Len(t, errs, 2)
	require.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, l.Identifiers().Map())
}

func TestEmptyInput(t *testing.T) {
	toks, errs, l := tokenize(t, "")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{{Kind: token.EOF, Value: "EOF", Line: 1, Column: 1}}, toks)
	require.Zero(t, l.Identifiers().Len())
	require.Zero(t, l.Literals().Len())

	want := make(map[string]int)
	for _, kw := range token.ReservedWords {
		want[kw.Word] = kw.Code
	}
	require.Equal(t, want, l.Reserved().Map())
}

func TestReservedWords(t *testing.T) {
	toks, errs, l := tokenize(t, "if else while return int float void char iff _if")
	require.Empty(t, errs)
	for _, tok := range toks[:8] {
		require.Equal(t, token.Reserved, tok.Kind, tok.Value)
	}
	require.Equal(t, token.Ident, toks[8].Kind)
	require.Equal(t, token.Ident, toks[9].Kind)
	require.Equal(t, map[string]int{"iff": 1, "_if": 2}, l.Identifiers().Map())
	require.Equal(t, 8, l.Reserved().Len())
	v, _ := l.Reserved().Lookup("char")
	require.Equal(t, 8, v)
}

func TestRepeatedIdentifiers(t *testing.T) {
	_, _, l := tokenize(t, "a b a c b a")
	require.Equal(t, 3, l.Identifiers().Len())
	v, ok := l.Identifiers().Lookup("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestLiteralsSharedAcrossKinds(t *testing.T) {
	toks, errs, l := tokenize(t, `x = "hi"; y = 32; z = "hi"; w = 1.5;`)
	require.Empty(t, errs)
	require.Equal(t, token.String, toks[2].Kind)
	require.Equal(t, `STRING."hi"`, toks[2].Tag())
	require.Equal(t, map[string]int{`"hi"`: 1, "32": 2, "1.5": 3}, l.Literals().Map())
	require.Equal(t, map[string]int{"x": 1, "y": 2, "z": 3, "w": 4}, l.Identifiers().Map())
}

func TestSymbols(t *testing.T) {
	toks, errs, _ := tokenize(t, "++ -- <= >= == != < > && || ! = ; , ( ) { } [ ] + - * /")
	require.Empty(t, errs)
	expected := []token.Kind{
		token.Symbol, token.Symbol, token.Lte, token.Gte, token.EqEq, token.Neq,
		token.Lt, token.Gt, token.AndAnd, token.OrOr, token.Not, token.Assign,
		token.Semi, token.Comma, token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.LBracket, token.RBracket, token.Plus, token.Minus, token.Star, token.Slash,
		token.EOF,
	}
	if diff := cmp.Diff(expected, kinds(toks)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLinesAndColumns(t *testing.T) {
	src := "a\n/* x\ny */ b\n\"s\nt\" c // tail\n"
	toks, errs, l := tokenize(t, src)
	require.Empty(t, errs)

	type pos struct {
		Kind   token.Kind
		Value  string
		Line   int
		Column int
	}
	got := make([]pos, len(toks))
	for i, tok := range toks {
		got[i] = pos{tok.Kind, tok.Value, tok.Line, tok.Column}
	}
	want := []pos{
		{token.Ident, "a", 1, 1},
		{token.Ident, "b", 3, 6},
		{token.String, "\"s\nt\"", 4, 1},
		{token.Ident, "c", 5, 4},
		{token.EOF, "EOF", 6, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 1, l.Literals().Len())
}

func TestUnicodeColumns(t *testing.T) {
	toks, errs, _ := tokenize(t, "a é b")
	require.Len(t, errs, 1)
	var ue *lexer.UnexpectedCharError
	require.ErrorAs(t, errs[0], &ue)
	require.Equal(t, 'é', ue.Char)
	require.Equal(t, 3, ue.Column)
	require.Equal(t, 5, toks[1].Column)
}

func TestUnterminatedStringDefault(t *testing.T) {
	toks, errs, l := tokenize(t, `x = "abc`)
	require.Equal(t, []token.Kind{token.Ident, token.Assign, token.EOF}, kinds(toks))
	require.Len(t, errs, 4)
	require.Zero(t, l.Literals().Len())
}

func TestUnterminatedFeature(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []token.Kind
		what  string
		line  int
		col   int
		eof   int
	}{
		{"block comment", "x /* open\nmore", []token.Kind{token.Ident, token.EOF}, "block comment", 1, 3, 2},
		{"string", "a\n  \"abc\ndef", []token.Kind{token.Ident, token.EOF}, "string literal", 2, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.SetFeature(config.FeatUnterminated, true)
			rec := &recorder{}
			l := lexer.NewLexer(cfg, rec)

			toks, errs := l.Tokenize(tt.input)
			require.Equal(t, tt.kinds, kinds(toks))
			require.Equal(t, tt.eof, toks[len(toks)-1].Line)
			require.Len(t, errs, 1)
			require.ErrorIs(t, errs[0], lexer.ErrUnterminated)

			var ue *lexer.UnterminatedError
			require.ErrorAs(t, errs[0], &ue)
			require.Equal(t, tt.what, ue.What)
			require.Equal(t, tt.line, ue.Line)
			require.Equal(t, tt.col, ue.Column)
			require.Equal(t, []string{fmt.Sprintf("%d:%d: Unterminated %s", tt.line, tt.col, tt.what)}, rec.errors)
		})
	}
}

func TestCRLF(t *testing.T) {
	_, errs, _ := tokenize(t, "a\r\nb")
	require.Len(t, errs, 1)
	require.EqualError(t, errs[0], `Unexpected character '\r' at line 1`)

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatCRLF, true)
	toks, errs := lexer.NewLexer(cfg, nil).Tokenize("a\r\nb")
	require.Empty(t, errs)
	require.Equal(t, 2, toks[1].Line)
}

func TestCommentFeaturesDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.ProcessFlags([]string{"Fno-block-comments", "Fno-c-comments"})
	l := lexer.NewLexer(cfg, nil)
	require.Len(t, l.Rules(), 7)

	toks, errs := l.Tokenize("a /* b */ // c")
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{
		token.Ident, token.Slash, token.Star, token.Ident, token.Star, token.Slash,
		token.Slash, token.Slash, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestReporter(t *testing.T) {
	rec := &recorder{}
	l := lexer.NewLexer(config.NewConfig(), rec)
	_, errs := l.Tokenize("x = 3. ++ $")
	require.Len(t, errs, 1)
	require.Equal(t, []string{"1:11: Unexpected character '$'"}, rec.errors)
	require.Equal(t, []config.Warning{config.WarnTrailingDot, config.WarnGenericSymbol}, rec.warnings)

	cfg := config.NewConfig()
	cfg.SetWarning(config.WarnUnexpectedChar, false)
	rec = &recorder{}
	_, errs = lexer.NewLexer(cfg, rec).Tokenize("$")
	require.Len(t, errs, 1, "errors are collected even when not printed")
	require.Empty(t, rec.errors)
}

func TestNextAfterEOF(t *testing.T) {
	l := lexer.NewLexer(config.NewConfig(), nil)
	l.Start("x")
	require.Equal(t, token.Ident, l.Next().Kind)
	for i := 0; i < 3; i++ {
		tok := l.Next()
		require.Equal(t, token.EOF, tok.Kind)
		require.Equal(t, "EOF", tok.Value)
	}
	require.Empty(t, l.Errors())
}

func TestTablesAccumulateAcrossRuns(t *testing.T) {
	l := lexer.NewLexer(config.NewConfig(), nil)
	l.Tokenize("a = 1;")
	toks, _ := l.Tokenize("b = 1; a")
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, map[string]int{"a": 1, "b": 2}, l.Identifiers().Map())
	require.Equal(t, map[string]int{"1": 1}, l.Literals().Map())
}

func TestIdempotentWithFreshLexer(t *testing.T) {
	src := "int main() {\n  float f = 2.5; /* c */\n  while (f >= 1.) { f = f - 1; }\n  return \"done\";\n} # ~"
	toks1, errs1, l1 := tokenize(t, src)
	toks2, errs2, l2 := tokenize(t, src)

	if diff := cmp.Diff(toks1, toks2); diff != "" {
		t.Fatalf("tokens differ (-first +second):\n%s", diff)
	}
	require.Equal(t, errs1, errs2)
	require.Equal(t, l1.Identifiers().Entries(), l2.Identifiers().Entries())
	require.Equal(t, l1.Literals().Entries(), l2.Literals().Entries())
	require.Equal(t, l1.Reserved().Entries(), l2.Reserved().Entries())
}

func TestAlwaysEndsWithSingleEOF(t *testing.T) {
	inputs := []string{"", " ", "\n\n", "#@$", "/*", "\"", "a/", "1.2.3", "x\n// only a comment"}
	for _, in := range inputs {
		toks, _, _ := tokenize(t, in)
		require.Equal(t, token.EOF, toks[len(toks)-1].Kind, "input %q", in)
		for _, tok := range toks[:len(toks)-1] {
			require.NotEqual(t, token.EOF, tok.Kind, "input %q", in)
		}
	}
}

func TestErrorsAreTyped(t *testing.T) {
	var err error = &lexer.UnterminatedError{What: "string literal", Line: 3}
	require.True(t, errors.Is(err, lexer.ErrUnterminated))
	require.False(t, errors.Is(err, lexer.ErrUnexpectedChar))
	require.Equal(t, "Unterminated string literal starting at line 3", err.Error())
}

func TestLongLineColumns(t *testing.T) {
	const n = 100000
	toks, errs, _ := tokenize(t, strings.Repeat("a ", n))
	require.Empty(t, errs)
	require.Len(t, toks, n+1)
	require.Equal(t, 2*(n-1)+1, toks[n-1].Column)
	require.Equal(t, 2*n+1, toks[n].Column)

	src := strings.Repeat("#", n)
	toks, errs, _ = tokenize(t, src)
	require.Len(t, toks, 1)
	require.Len(t, errs, n)
	var ue *lexer.UnexpectedCharError
	require.ErrorAs(t, errs[n-1], &ue)
	require.Equal(t, n, ue.Column)
}

func TestLongLineScalesLikeManyLines(t *testing.T) {
	if testing.Short() {
		t.Skip("timing comparison")
	}
	const n = 100000
	elapsed := func(src string) time.Duration {
		start := time.Now()
		lexer.NewLexer(config.NewConfig(), nil).Tokenize(src)
		return time.Since(start)
	}

	manyLines := elapsed(strings.Repeat("a\n", n))
	oneLine := elapsed(strings.Repeat("a ", n))
	require.Less(t, oneLine, 10*manyLines+time.Second, "one line %v, many lines %v", oneLine, manyLines)

	badChars := elapsed(strings.Repeat("#", n))
	require.Less(t, badChars, 10*manyLines+time.Second, "skipped chars %v, many lines %v", badChars, manyLines)
}

func BenchmarkTokenizeOneLine(b *testing.B) {
	src := strings.Repeat("x1 = 32; ", 10000)
	for i := 0; i < b.N; i++ {
		lexer.NewLexer(config.NewConfig(), nil).Tokenize(src)
	}
}

func BenchmarkTokenizeUnexpectedChars(b *testing.B) {
	src := strings.Repeat("#", 10000)
	for i := 0; i < b.N; i++ {
		lexer.NewLexer(config.NewConfig(), nil).Tokenize(src)
	}
}

func TestReservedWordsFollowKeywordTable(t *testing.T) {
	toks, errs, l := tokenize(t, "If while WHILE")
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{token.Ident, token.Reserved, token.Ident, token.EOF}, kinds(toks))
	for _, tok := range toks[:3] {
		require.Equal(t, token.IsReserved(tok.Value), tok.Kind == token.Reserved, tok.Value)
	}
	require.Equal(t, len(token.KeywordMap), l.Reserved().Len())
	require.Equal(t, map[string]int{"If": 1, "WHILE": 2}, l.Identifiers().Map())
}

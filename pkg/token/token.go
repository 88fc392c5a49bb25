package token

import "fmt"

type Kind int

const (
	EOF Kind = iota
	Reserved
	Ident
	IntNumber
	FloatNumber
	String
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma
	Assign
	EqEq
	Neq
	Lt
	Gt
	Lte
	Gte
	AndAnd
	OrOr
	Not
	Plus
	Minus
	Star
	Slash
	Symbol
	kindCount
)

var kindNames = [...]string{
	EOF:         "EOF",
	Reserved:    "RESERVED",
	Ident:       "ID",
	IntNumber:   "NUM-INT",
	FloatNumber: "NUM-FLOAT",
	String:      "STRING",
	LParen:      "LPARENT",
	RParen:      "RPARENT",
	LBrace:      "LBRACE",
	RBrace:      "RBRACE",
	LBracket:    "LBRACKET",
	RBracket:    "RBRACKET",
	Semi:        "SEMICOLON",
	Comma:       "COMMA",
	Assign:      "ASSIGN",
	EqEq:        "RELATIONALEQ",
	Neq:         "RELATIONALNEQ",
	Lt:          "RELATIONALLT",
	Gt:          "RELATIONALGT",
	Lte:         "RELATIONALLTE",
	Gte:         "RELATIONALGTE",
	AndAnd:      "LOGICALAND",
	OrOr:        "LOGICALOR",
	Not:         "LOGICALNOT",
	Plus:        "PLUS",
	Minus:       "MINUS",
	Star:        "TIMES",
	Slash:       "DIVIDE",
	Symbol:      "SYMBOL",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || k >= kindCount {
		return nil, fmt.Errorf("invalid token kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := LookupKind(string(text))
	if !ok {
		return fmt.Errorf("unknown token kind %q", text)
	}
	*k = kind
	return nil
}

// HasTableEntry reports whether tokens of this kind are recorded in a symbol table.
func (k Kind) HasTableEntry() bool {
	switch k {
	case Ident, IntNumber, FloatNumber, String:
		return true
	}
	return false
}

var kindByName = make(map[string]Kind, len(kindNames))

// LookupKind maps a kind name such as "RELATIONALLTE" back to its Kind.
func LookupKind(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// SymbolMap turns operator and punctuation lexemes into their specific kinds.
// Anything matched by the symbol rule but absent here stays a generic Symbol.
var SymbolMap = map[string]Kind{
	"(":  LParen,
	")":  RParen,
	"{":  LBrace,
	"}":  RBrace,
	"[":  LBracket,
	"]":  RBracket,
	";":  Semi,
	",":  Comma,
	"=":  Assign,
	"==": EqEq,
	"!=": Neq,
	"<":  Lt,
	">":  Gt,
	"<=": Lte,
	">=": Gte,
	"&&": AndAnd,
	"||": OrOr,
	"!":  Not,
	"+":  Plus,
	"-":  Minus,
	"*":  Star,
	"/":  Slash,
}

func LookupSymbol(text string) Kind {
	if k, ok := SymbolMap[text]; ok {
		return k
	}
	return Symbol
}

type Keyword struct {
	Word string
	Code int
}

// ReservedWords is the keyword configuration table, in code order.
var ReservedWords = []Keyword{
	{"if", 1},
	{"else", 2},
	{"while", 3},
	{"return", 4},
	{"int", 5},
	{"float", 6},
	{"void", 7},
	{"char", 8},
}

var KeywordMap = make(map[string]int, len(ReservedWords))

func init() {
	for k, name := range kindNames {
		kindByName[name] = Kind(k)
	}
	for _, kw := range ReservedWords {
		KeywordMap[kw.Word] = kw.Code
	}
}

func IsReserved(text string) bool {
	_, ok := KeywordMap[text]
	return ok
}

type Token struct {
	Kind      Kind
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// Tag renders the token the way the symbol-table listing refers to it:
// table-backed kinds carry their text, e.g. "ID.x1" or "NUM-INT.32".
func (t Token) Tag() string {
	if t.Kind.HasTableEntry() {
		return t.Kind.String() + "." + t.Value
	}
	return t.Kind.String()
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Column, t.Kind, t.Value)
}

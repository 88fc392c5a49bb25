package lexer

import (
	plexer "github.com/alecthomas/participle/v2/lexer"

	"github.com/xplshn/clex/pkg/config"
)

// Hint says what to do with the text a rule matched.
type Hint int

const (
	Ignore Hint = iota
	Float
	Int
	String
	Ident
	Symbol
	Invalid
)

func (h Hint) String() string {
	switch h {
	case Ignore:
		return "ignore"
	case Float:
		return "NUM-FLOAT"
	case Int:
		return "NUM-INT"
	case String:
		return "STRING"
	case Ident:
		return "ID"
	case Symbol:
		return "SYMBOL"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Rule is one entry of the ordered rule list. Rules are tried in declaration
// order and the first one matching at the cursor wins, so order encodes
// priority (float before int, comments before the '/' operator).
type Rule struct {
	Name    string
	Pattern string
	Hint    Hint
	// Opener marks an atomic rule: when the source at the cursor starts with
	// it but the pattern fails, the literal is unterminated.
	Opener string
	// What names the construct in unterminated diagnostics.
	What string
}

var (
	whitespaceRule   = Rule{Name: "Whitespace", Pattern: `[ \t\n]+`, Hint: Ignore}
	crlfRule         = Rule{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Hint: Ignore}
	blockCommentRule = Rule{Name: "BlockComment", Pattern: `/\*(?s:.*?)\*/`, Hint: Ignore, Opener: "/*", What: "block comment"}
	lineCommentRule  = Rule{Name: "LineComment", Pattern: `//[^\n]*`, Hint: Ignore}
	floatRule        = Rule{Name: "Float", Pattern: `[0-9]+\.[0-9]*`, Hint: Float}
	intRule          = Rule{Name: "Int", Pattern: `[0-9]+`, Hint: Int}
	stringRule       = Rule{Name: "String", Pattern: `"(?s:.*?)"`, Hint: String, Opener: `"`, What: "string literal"}
	identRule        = Rule{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Hint: Ident}
	symbolRule       = Rule{Name: "Symbol", Pattern: `\+\+|--|\+|-|\*|/|<=|>=|==|!=|<|>|&&|\|\||!|=|;|,|\(|\)|\{|\}|\[|\]`, Hint: Symbol}

	// invalidRule takes the single rune no other rule accepts.
	invalidRule = Rule{Name: "Invalid", Pattern: `(?s:.)`, Hint: Invalid}
)

// Rules returns the ordered rule list for cfg.
func Rules(cfg *config.Config) []Rule {
	rules := make([]Rule, 0, 9)
	if cfg.IsFeatureEnabled(config.FeatCRLF) {
		rules = append(rules, crlfRule)
	} else {
		rules = append(rules, whitespaceRule)
	}
	if cfg.IsFeatureEnabled(config.FeatBlockComments) {
		rules = append(rules, blockCommentRule)
	}
	if cfg.IsFeatureEnabled(config.FeatCComments) {
		rules = append(rules, lineCommentRule)
	}
	return append(rules, floatRule, intRule, stringRule, identRule, symbolRule, invalidRule)
}

// ruleSet is the compiled form of a rule list.
type ruleSet struct {
	rules []Rule
	def   *plexer.StatefulDefinition
	index map[plexer.TokenType]int
}

func compileRules(rules []Rule) (*ruleSet, error) {
	simple := make([]plexer.SimpleRule, len(rules))
	for i, r := range rules {
		simple[i] = plexer.SimpleRule{Name: r.Name, Pattern: r.Pattern}
	}
	def, err := plexer.NewSimple(simple)
	if err != nil {
		return nil, err
	}

	symbols := def.Symbols()
	rs := &ruleSet{rules: rules, def: def, index: make(map[plexer.TokenType]int, len(rules))}
	for i, r := range rules {
		rs.index[symbols[r.Name]] = i
	}
	return rs, nil
}

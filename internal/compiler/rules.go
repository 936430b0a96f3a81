package compiler

import "github.com/xirelogy/go-lox/internal/token"

// Precedence orders binding strength, loosest first.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecTernary
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool) error

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is filled in init because the handlers refer back to it.
var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LParen:       {(*Compiler).grouping, nil, PrecNone},
		token.Minus:        {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.Plus:         {nil, (*Compiler).binary, PrecTerm},
		token.Slash:        {nil, (*Compiler).binary, PrecFactor},
		token.Star:         {nil, (*Compiler).binary, PrecFactor},
		token.Bang:         {(*Compiler).unary, nil, PrecNone},
		token.BangEqual:    {nil, (*Compiler).binary, PrecEquality},
		token.Equal:        {nil, (*Compiler).binary, PrecEquality},
		token.Greater:      {nil, (*Compiler).binary, PrecComparison},
		token.GreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		token.Less:         {nil, (*Compiler).binary, PrecComparison},
		token.LessEqual:    {nil, (*Compiler).binary, PrecComparison},
		token.Question:     {nil, (*Compiler).ternary, PrecTernary},
		token.Identifier:   {(*Compiler).variable, nil, PrecNone},
		token.String:       {(*Compiler).stringLiteral, nil, PrecNone},
		token.Int:          {(*Compiler).intLiteral, nil, PrecNone},
		token.Float:        {(*Compiler).floatLiteral, nil, PrecNone},
		token.True:         {(*Compiler).literal, nil, PrecNone},
		token.False:        {(*Compiler).literal, nil, PrecNone},
		token.None:         {(*Compiler).literal, nil, PrecNone},
		token.And:          {nil, (*Compiler).and, PrecAnd},
		token.Or:           {nil, (*Compiler).or, PrecOr},
	}
}

func getRule(kind token.Kind) parseRule {
	return rules[kind]
}

var binaryOps = map[token.Kind]byte{
	token.Plus:         OP_ADD,
	token.Minus:        OP_SUBTRACT,
	token.Star:         OP_MULTIPLY,
	token.Slash:        OP_DIVIDE,
	token.Equal:        OP_EQUALS,
	token.BangEqual:    OP_NOT_EQUALS,
	token.Greater:      OP_GREATER,
	token.GreaterEqual: OP_GREATER_EQUALS,
	token.Less:         OP_LESS,
	token.LessEqual:    OP_LESS_EQUALS,
}

// compoundOps maps an assignment operator to the arithmetic it applies.
var compoundOps = map[token.Kind]byte{
	token.PlusEqual:  OP_ADD,
	token.MinusEqual: OP_SUBTRACT,
	token.StarEqual:  OP_MULTIPLY,
	token.SlashEqual: OP_DIVIDE,
}

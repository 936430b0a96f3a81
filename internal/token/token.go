package token

import "fmt"

// Kind identifies the category of a token.
type Kind string

// Location is a 1-based line plus a byte column window [Start, End) within that line.
type Location struct {
	Line  int
	Start int
	End   int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d:%d", l.Line, l.Start, l.End)
}

// Span ties a Location to the file it was read from.
type Span struct {
	File     string
	Location Location
}

func (s Span) String() string {
	return fmt.Sprintf("%s: %s", s.File, s.Location)
}

// Token carries the lexical item along with its source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   Span
}

func (t Token) String() string {
	if t.Lexeme == "" {
		return string(t.Kind)
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}

const (
	EOF Kind = "EOF"

	// identifiers and literals
	Identifier Kind = "IDENTIFIER"
	Int        Kind = "INT"
	Float      Kind = "FLOAT"
	String     Kind = "STRING"

	// keywords
	If       Kind = "IF"
	Elif     Kind = "ELIF"
	Else     Kind = "ELSE"
	While    Kind = "WHILE"
	For      Kind = "FOR"
	Break    Kind = "BREAK"
	Continue Kind = "CONTINUE"
	Let      Kind = "LET"
	Print    Kind = "PRINT"
	Fn       Kind = "FN"
	Lambda   Kind = "LM"
	Return   Kind = "RETURN"
	Class    Kind = "CLASS"
	This     Kind = "THIS"
	Public   Kind = "PUB"
	Static   Kind = "STATIC"
	True     Kind = "TRUE"
	False    Kind = "FALSE"
	None     Kind = "NONE"
	And      Kind = "AND"
	Or       Kind = "OR"

	// operators
	Assign       Kind = "ASSIGN"       // =
	Equal        Kind = "EQUAL"        // ==
	Bang         Kind = "BANG"         // !
	BangEqual    Kind = "BANGEQUAL"    // !=
	Less         Kind = "LESS"         // <
	LessEqual    Kind = "LESSEQUAL"    // <=
	Greater      Kind = "GREATER"      // >
	GreaterEqual Kind = "GREATEREQUAL" // >=
	Plus         Kind = "PLUS"         // +
	PlusEqual    Kind = "PLUSEQUAL"    // +=
	PlusPlus     Kind = "PLUSPLUS"     // ++
	Minus        Kind = "MINUS"        // -
	MinusEqual   Kind = "MINUSEQUAL"   // -=
	MinusMinus   Kind = "MINUSMINUS"   // --
	Star         Kind = "STAR"         // *
	StarEqual    Kind = "STAREQUAL"    // *=
	Slash        Kind = "SLASH"        // /
	SlashEqual   Kind = "SLASHEQUAL"   // /=
	Percent      Kind = "PERCENT"      // %
	PercentEqual Kind = "PERCENTEQUAL" // %=
	Question     Kind = "QUESTION"     // ?

	// delimiters
	Comma     Kind = "COMMA"
	Colon     Kind = "COLON"
	Semicolon Kind = "SEMICOLON"
	Dot       Kind = "DOT"
	LParen    Kind = "LPAREN"
	RParen    Kind = "RPAREN"
	LBrace    Kind = "LBRACE"
	RBrace    Kind = "RBRACE"
	LBracket  Kind = "LBRACKET"
	RBracket  Kind = "RBRACKET"
)

var keywords = map[string]Kind{
	"if":       If,
	"elif":     Elif,
	"else":     Else,
	"while":    While,
	"for":      For,
	"break":    Break,
	"continue": Continue,
	"let":      Let,
	"print":    Print,
	"fn":       Fn,
	"lm":       Lambda,
	"return":   Return,
	"class":    Class,
	"this":     This,
	"pub":      Public,
	"static":   Static,
	"true":     True,
	"false":    False,
	"none":     None,
	"and":      And,
	"or":       Or,
}

// LookupIdent returns the keyword kind or Identifier.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Identifier
}

// StartsStatement reports whether a token of this kind can begin a statement
// boundary for error recovery.
func (k Kind) StartsStatement() bool {
	switch k {
	case Class, Fn, Let, For, If, While, Print, Return:
		return true
	default:
		return false
	}
}

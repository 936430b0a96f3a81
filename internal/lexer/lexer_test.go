package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/xirelogy/go-lox/internal/token"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `
let total = 1 + 2.5;
if (total >= 3 and !done) { print 'yes'; }
x -= 1; y--; z += "a"; w != 2 ? a : b;
`

	tests := []struct {
		kind   token.Kind
		lexeme string
	}{
		{token.Let, "let"},
		{token.Identifier, "total"},
		{token.Assign, "="},
		{token.Int, "1"},
		{token.Plus, "+"},
		{token.Float, "2.5"},
		{token.Semicolon, ";"},
		{token.If, "if"},
		{token.LParen, "("},
		{token.Identifier, "total"},
		{token.GreaterEqual, ">="},
		{token.Int, "3"},
		{token.And, "and"},
		{token.Bang, "!"},
		{token.Identifier, "done"},
		{token.RParen, ")"},
		{token.LBrace, "{"},
		{token.Print, "print"},
		{token.String, "'yes'"},
		{token.Semicolon, ";"},
		{token.RBrace, "}"},
		{token.Identifier, "x"},
		{token.MinusEqual, "-="},
		{token.Int, "1"},
		{token.Semicolon, ";"},
		{token.Identifier, "y"},
		{token.MinusMinus, "--"},
		{token.Semicolon, ";"},
		{token.Identifier, "z"},
		{token.PlusEqual, "+="},
		{token.String, `"a"`},
		{token.Semicolon, ";"},
		{token.Identifier, "w"},
		{token.BangEqual, "!="},
		{token.Int, "2"},
		{token.Question, "?"},
		{token.Identifier, "a"},
		{token.Colon, ":"},
		{token.Identifier, "b"},
		{token.Semicolon, ";"},
		{token.EOF, ""},
	}

	l := New("test", input)
	for i, expected := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error %v", i, err)
		}
		if tok.Kind != expected.kind || tok.Lexeme != expected.lexeme {
			t.Fatalf("token %d: expected %v %q, got %v %q", i, expected.kind, expected.lexeme, tok.Kind, tok.Lexeme)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		kinds []token.Kind
	}{
		{"42", []token.Kind{token.Int, token.EOF}},
		{"4.25", []token.Kind{token.Float, token.EOF}},
		{"1.", []token.Kind{token.Int, token.Dot, token.EOF}},
		{"1.x", []token.Kind{token.Int, token.Dot, token.Identifier, token.EOF}},
	}
	for _, tt := range tests {
		toks, err := New("test", tt.input).AllTokens()
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.input, err)
		}
		if len(toks) != len(tt.kinds) {
			t.Fatalf("%q: expected %d tokens, got %v", tt.input, len(tt.kinds), toks)
		}
		for i, k := range tt.kinds {
			if toks[i].Kind != k {
				t.Fatalf("%q: token %d expected %s, got %s", tt.input, i, k, toks[i].Kind)
			}
		}
	}
}

func TestLexerPositions(t *testing.T) {
	input := "let a = 1;\n  print a;"
	toks, err := New("main.lox", input).AllTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// print
	tok := toks[5]
	if tok.Kind != token.Print {
		t.Fatalf("expected print, got %v", tok)
	}
	want := token.Location{Line: 2, Start: 2, End: 7}
	if tok.Span.Location != want {
		t.Fatalf("expected %v, got %v", want, tok.Span.Location)
	}
	if tok.Span.File != "main.lox" {
		t.Fatalf("expected file main.lox, got %q", tok.Span.File)
	}
	eof := toks[len(toks)-1]
	if eof.Kind != token.EOF || eof.Span.Location.Line != 2 || eof.Span.Location.Start != len("  print a;") {
		t.Fatalf("unexpected EOF span %v", eof.Span)
	}
}

func TestLexerComments(t *testing.T) {
	input := "// header\nprint 1; /* block\ncomment */ print 2; // trailing"
	toks, err := New("test", input).AllTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := []token.Kind{token.Print, token.Int, token.Semicolon, token.Print, token.Int, token.Semicolon, token.EOF}
	if len(toks) != len(kinds) {
		t.Fatalf("expected %d tokens, got %v", len(kinds), toks)
	}
	if toks[3].Span.Location.Line != 3 {
		t.Fatalf("expected second print on line 3, got %d", toks[3].Span.Location.Line)
	}
}

func TestLexerMultilineString(t *testing.T) {
	input := "print \"one\ntwo\"; print 3;"
	toks, err := New("test", input).AllTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	str := toks[1]
	if str.Kind != token.String || str.Span.Location.Line != 1 {
		t.Fatalf("expected string on line 1, got %v at %v", str, str.Span)
	}
	if str.Span.Location.End != len(`print "one`) {
		t.Fatalf("expected underline to stop at end of first line, got %v", str.Span.Location)
	}
	if toks[3].Span.Location.Line != 2 {
		t.Fatalf("expected token after string on line 2, got %d", toks[3].Span.Location.Line)
	}
}

func TestLexerEscapedQuote(t *testing.T) {
	toks, err := New("test", `print "a\"b";`).AllTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[1].Lexeme != `"a\"b"` {
		t.Fatalf("unexpected lexeme %q", toks[1].Lexeme)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := New("test", "let a = 1;\nprint 'abc").AllTokens()
	var lexErr *Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if lexErr.Kind != UnterminatedString {
		t.Fatalf("expected unterminated string, got %v", lexErr.Kind)
	}
	want := token.Location{Line: 2, Start: 6, End: 7}
	if lexErr.Span.Location != want {
		t.Fatalf("expected span anchored at string start %v, got %v", want, lexErr.Span.Location)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	_, err := New("test", "print 1 # 2;").AllTokens()
	var lexErr *Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if lexErr.Kind != UnexpectedCharacter || lexErr.Span.Location.Start != 8 {
		t.Fatalf("unexpected error %v", lexErr)
	}
}

func TestLexerUnicodeIdentifier(t *testing.T) {
	toks, err := New("test", "let größe = 1;").AllTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[1].Kind != token.Identifier || toks[1].Lexeme != "größe" {
		t.Fatalf("unexpected token %v", toks[1])
	}
	if toks[1].Span.Location.End-toks[1].Span.Location.Start != len("größe") {
		t.Fatalf("expected byte-width span, got %v", toks[1].Span.Location)
	}
}

func TestPropertySpansSliceLexemes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("every token span slices its own lexeme out of its line", prop.ForAll(
		func(words []string, breaks []bool) bool {
			var sb strings.Builder
			for i, w := range words {
				sb.WriteString(w)
				if i < len(breaks) && breaks[i] {
					sb.WriteString("\n")
				} else {
					sb.WriteString(" ")
				}
			}
			src := sb.String()
			lines := strings.Split(src, "\n")
			toks, err := New("prop", src).AllTokens()
			if err != nil {
				return false
			}
			for _, tok := range toks {
				if tok.Kind == token.EOF {
					continue
				}
				loc := tok.Span.Location
				if loc.Line < 1 || loc.Line > len(lines) {
					return false
				}
				line := lines[loc.Line-1]
				if loc.End > len(line) || line[loc.Start:loc.End] != tok.Lexeme {
					return false
				}
			}
			return toks[len(toks)-1].Kind == token.EOF
		},
		gen.SliceOfN(12, gen.Identifier()),
		gen.SliceOfN(12, gen.Bool()),
	))

	properties.TestingRun(t)
}

package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xirelogy/go-lox/internal/token"
)

// ErrorKind classifies a lexical failure.
type ErrorKind int

const (
	UnterminatedString ErrorKind = iota
	UnexpectedCharacter
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case UnexpectedCharacter:
		return "unexpected character"
	default:
		return "lexical error"
	}
}

// Error reports a malformed token. Lexing does not recover past it.
type Error struct {
	Kind    ErrorKind
	Span    token.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// Lexer converts source text into a stream of tokens.
type Lexer struct {
	file      string
	input     string
	start     int // byte offset of the token being scanned
	pos       int // next byte to read
	line      int
	lineStart int // byte offset where the current line begins
	startLine int
	startCol  int
}

// New creates a lexer for the provided source text. file is carried into every span.
func New(file, input string) *Lexer {
	return &Lexer{
		file:  file,
		input: input,
		line:  1,
	}
}

// AllTokens scans the whole input. The last token is always EOF.
func (l *Lexer) AllTokens() ([]token.Token, error) {
	tokens := make([]token.Token, 0, len(l.input)/4+1)
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.pos - l.lineStart

	if l.atEnd() {
		return token.Token{
			Kind: token.EOF,
			Span: l.span(l.startCol, l.startCol+1),
		}, nil
	}

	ch := l.advance()
	switch ch {
	case '(':
		return l.makeToken(token.LParen), nil
	case ')':
		return l.makeToken(token.RParen), nil
	case '{':
		return l.makeToken(token.LBrace), nil
	case '}':
		return l.makeToken(token.RBrace), nil
	case '[':
		return l.makeToken(token.LBracket), nil
	case ']':
		return l.makeToken(token.RBracket), nil
	case ',':
		return l.makeToken(token.Comma), nil
	case '.':
		return l.makeToken(token.Dot), nil
	case ';':
		return l.makeToken(token.Semicolon), nil
	case ':':
		return l.makeToken(token.Colon), nil
	case '?':
		return l.makeToken(token.Question), nil
	case '-':
		switch {
		case l.match('='):
			return l.makeToken(token.MinusEqual), nil
		case l.match('-'):
			return l.makeToken(token.MinusMinus), nil
		}
		return l.makeToken(token.Minus), nil
	case '+':
		switch {
		case l.match('='):
			return l.makeToken(token.PlusEqual), nil
		case l.match('+'):
			return l.makeToken(token.PlusPlus), nil
		}
		return l.makeToken(token.Plus), nil
	case '*':
		return l.either('=', token.StarEqual, token.Star), nil
	case '/':
		return l.either('=', token.SlashEqual, token.Slash), nil
	case '%':
		return l.either('=', token.PercentEqual, token.Percent), nil
	case '!':
		return l.either('=', token.BangEqual, token.Bang), nil
	case '=':
		return l.either('=', token.Equal, token.Assign), nil
	case '<':
		return l.either('=', token.LessEqual, token.Less), nil
	case '>':
		return l.either('=', token.GreaterEqual, token.Greater), nil
	case '"', '\'':
		return l.readString(ch)
	}

	if isDigit(ch) {
		return l.readNumber(), nil
	}
	if isIdentStart(ch) {
		return l.readIdentifier(), nil
	}
	return token.Token{}, &Error{
		Kind:    UnexpectedCharacter,
		Span:    l.span(l.startCol, l.pos-l.lineStart),
		Message: fmt.Sprintf("unexpected character %q", ch),
	}
}

func (l *Lexer) makeToken(kind token.Kind) token.Token {
	lexeme := l.input[l.start:l.pos]
	end := l.pos - l.lineStart
	if l.line != l.startLine {
		// multi-line token: underline only the part on its first line
		end = l.startCol + strings.IndexByte(lexeme, '\n')
	}
	return token.Token{
		Kind:   kind,
		Lexeme: lexeme,
		Span:   l.span(l.startCol, end),
	}
}

func (l *Lexer) either(next rune, matched, single token.Kind) token.Token {
	if l.match(next) {
		return l.makeToken(matched)
	}
	return l.makeToken(single)
}

func (l *Lexer) span(start, end int) token.Span {
	return token.Span{
		File: l.file,
		Location: token.Location{
			Line:  l.startLine,
			Start: start,
			End:   end,
		},
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			switch l.peekNext() {
			case '/':
				l.skipLineComment()
			case '*':
				l.skipBlockComment()
			default:
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() {
	l.advance() // '/'
	l.advance() // '*'
	for !l.atEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

func (l *Lexer) readIdentifier() token.Token {
	for !l.atEnd() {
		r := l.peek()
		if !isIdentStart(r) && !isDigit(r) && !unicode.IsDigit(r) {
			break
		}
		l.advance()
	}
	return l.makeToken(token.LookupIdent(l.input[l.start:l.pos]))
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // '.'
		for isDigit(l.peek()) {
			l.advance()
		}
		return l.makeToken(token.Float)
	}
	return l.makeToken(token.Int)
}

func (l *Lexer) readString(quote rune) (token.Token, error) {
	for !l.atEnd() && l.peek() != quote {
		if l.peek() == '\\' {
			l.advance()
			if l.atEnd() {
				break
			}
		}
		l.advance()
	}
	if l.atEnd() {
		return token.Token{}, &Error{
			Kind:    UnterminatedString,
			Span:    l.span(l.startCol, l.startCol+1),
			Message: "unterminated string",
		}
	}
	l.advance() // closing quote
	return l.makeToken(token.String), nil
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.atEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if l.pos+size >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.atEnd() || l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.lineStart = l.pos
	}
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

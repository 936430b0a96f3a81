// Package compiler turns a token stream into bytecode in a single pass.
package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xirelogy/go-lox/internal/diag"
	"github.com/xirelogy/go-lox/internal/lexer"
	"github.com/xirelogy/go-lox/internal/token"
	"github.com/xirelogy/go-lox/internal/value"
)

// Compiler is a precedence-climbing parser that emits code as it parses.
type Compiler struct {
	file   string
	tokens []token.Token
	pos    int
	prev   token.Token
	cur    token.Token

	chunk   *Chunk
	spans   SpanTable
	scope   *scope
	globals map[string]uint16

	hadError  bool
	panicMode bool
	errs      ErrorList
}

// New creates a compiler over tokens, which should end with EOF.
func New(file string, tokens []token.Token) *Compiler {
	if n := len(tokens); n == 0 || tokens[n-1].Kind != token.EOF {
		owned := make([]token.Token, n, n+1)
		copy(owned, tokens)
		tokens = append(owned, token.Token{Kind: token.EOF, Span: token.Span{File: file}})
	}
	c := &Compiler{
		file:    file,
		tokens:  tokens,
		chunk:   &Chunk{},
		scope:   newScope(),
		globals: make(map[string]uint16),
	}
	c.advance()
	return c
}

// Compile lexes and compiles source. Lexical and syntax errors are both
// returned as an ErrorList.
func Compile(file, source string) (*Program, error) {
	tokens, err := lexer.New(file, source).AllTokens()
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			return nil, ErrorList{diag.At(lexErr.Span, "%s", lexErr.Message)}
		}
		return nil, err
	}
	return New(file, tokens).Compile()
}

// Compile consumes the whole token stream. On any error no program is
// returned, even if code was partially emitted.
func (c *Compiler) Compile() (*Program, error) {
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.emitByte(OP_RETURN)
	if c.hadError {
		return nil, c.errs
	}
	return &Program{File: c.file, Chunk: c.chunk, Spans: c.spans}, nil
}

// token stream

func (c *Compiler) advance() {
	c.prev = c.cur
	if c.cur.Kind == token.EOF {
		return
	}
	c.cur = c.tokens[c.pos]
	if c.pos < len(c.tokens)-1 {
		c.pos++
	}
}

func (c *Compiler) check(kind token.Kind) bool {
	return c.cur.Kind == kind
}

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Kind, format string, args ...any) error {
	if c.check(kind) {
		c.advance()
		return nil
	}
	return c.errorAt(c.cur, format, args...)
}

// errorAt records a diagnostic unless the compiler is already recovering
// from an earlier one. It always returns errSyntax.
func (c *Compiler) errorAt(tok token.Token, format string, args ...any) error {
	if c.panicMode {
		return errSyntax
	}
	c.panicMode = true
	c.hadError = true
	c.errs = append(c.errs, diag.At(tok.Span, format, args...))
	return errSyntax
}

// synchronize skips to a statement boundary. Inside a block it also stops
// before the closing brace so block can end the scope.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for !c.check(token.EOF) {
		if c.prev.Kind == token.Semicolon || c.cur.Kind.StartsStatement() {
			return
		}
		if c.scope.depth > 0 && c.check(token.RBrace) {
			return
		}
		c.advance()
	}
}

// statements

func (c *Compiler) declaration() {
	start := len(c.chunk.Code)
	first := c.cur
	var err error
	if c.match(token.Let) {
		err = c.letDeclaration()
	} else {
		err = c.statement()
	}
	if err != nil {
		c.synchronize()
		return
	}
	c.recordSpan(start, joinSpan(first, c.prev))
}

func (c *Compiler) letDeclaration() error {
	if err := c.consume(token.Identifier, "expected variable name after `let`"); err != nil {
		return err
	}
	name := c.prev
	local := c.scope.depth > 0
	if local {
		if c.scope.declaredHere(name.Lexeme) {
			return c.errorAt(name, "variable `%s` is already declared in this scope", name.Lexeme)
		}
		if !c.scope.addLocal(name) {
			return c.errorAt(name, "too many local variables in scope")
		}
		// a failed initializer must not leave the slot unreadable for
		// the statements that follow
		defer c.scope.markInitialized()
	}

	if c.match(token.Assign) {
		if err := c.expression(); err != nil {
			return err
		}
	} else {
		c.emitByte(OP_NONE)
	}
	if err := c.consume(token.Semicolon, "expected ';' after variable declaration"); err != nil {
		return err
	}
	if local {
		return nil
	}
	idx, err := c.globalConstant(name)
	if err != nil {
		return err
	}
	c.emitOpU16(OP_DEF_GLOBAL, idx)
	return nil
}

func (c *Compiler) statement() error {
	switch {
	case c.match(token.Print):
		return c.printStatement()
	case c.match(token.If):
		return c.ifStatement()
	case c.match(token.While):
		return c.whileStatement()
	case c.match(token.LBrace):
		c.beginScope()
		err := c.block()
		c.endScope()
		return err
	default:
		return c.expressionStatement()
	}
}

func (c *Compiler) printStatement() error {
	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.Semicolon, "expected ';' after value"); err != nil {
		return err
	}
	c.emitByte(OP_PRINT)
	return nil
}

func (c *Compiler) expressionStatement() error {
	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.Semicolon, "expected ';' after expression"); err != nil {
		return err
	}
	c.emitByte(OP_POP)
	return nil
}

func (c *Compiler) block() error {
	for !c.check(token.RBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	return c.consume(token.RBrace, "expected '}' after block")
}

func (c *Compiler) ifStatement() error {
	var endJumps []int
	for {
		if err := c.expression(); err != nil {
			return err
		}
		// jump to the next arm when false
		next := c.emitJump(OP_JUMP_FALSE)
		c.emitByte(OP_POP) // condition, taken path
		if err := c.statement(); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emitJump(OP_JUMP))
		if err := c.patchJump(next); err != nil {
			return err
		}
		c.emitByte(OP_POP) // condition, skipped path
		if !c.match(token.Elif) {
			break
		}
	}
	if c.match(token.Else) {
		if err := c.statement(); err != nil {
			return err
		}
	}
	for _, j := range endJumps {
		if err := c.patchJump(j); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) whileStatement() error {
	loopStart := len(c.chunk.Code)
	if err := c.expression(); err != nil {
		return err
	}
	exitJump := c.emitJump(OP_JUMP_FALSE)
	c.emitByte(OP_POP)
	if err := c.statement(); err != nil {
		return err
	}
	if err := c.emitLoop(loopStart); err != nil {
		return err
	}
	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	c.emitByte(OP_POP)
	return nil
}

func (c *Compiler) beginScope() {
	c.scope.begin()
}

func (c *Compiler) endScope() {
	for n := c.scope.end(); n > 0; n-- {
		c.emitByte(OP_POP)
	}
}

// expressions

func (c *Compiler) expression() error {
	return c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) error {
	c.advance()
	prefix := getRule(c.prev.Kind).prefix
	if prefix == nil {
		return c.errorAt(c.prev, "expected expression")
	}
	canAssign := prec <= PrecAssignment
	if err := prefix(c, canAssign); err != nil {
		return err
	}
	for prec <= getRule(c.cur.Kind).precedence {
		c.advance()
		if err := getRule(c.prev.Kind).infix(c, canAssign); err != nil {
			return err
		}
	}
	if canAssign && c.isAssignOp(c.cur.Kind) {
		return c.errorAt(c.cur, "invalid assignment target")
	}
	return nil
}

func (c *Compiler) isAssignOp(kind token.Kind) bool {
	if kind == token.Assign {
		return true
	}
	_, ok := compoundOps[kind]
	return ok
}

func (c *Compiler) grouping(bool) error {
	open := c.prev
	if err := c.expression(); err != nil {
		return err
	}
	if !c.check(token.RParen) {
		return c.errorAt(open, "expected ')' after expression")
	}
	c.advance()
	return nil
}

func (c *Compiler) unary(bool) error {
	op := c.prev
	if err := c.parsePrecedence(PrecUnary); err != nil {
		return err
	}
	switch op.Kind {
	case token.Minus:
		c.emitOp(OP_NEGATE, op)
	case token.Bang:
		c.emitOp(OP_NOT, op)
	}
	return nil
}

func (c *Compiler) binary(bool) error {
	op := c.prev
	rule := getRule(op.Kind)
	if err := c.parsePrecedence(rule.precedence + 1); err != nil {
		return err
	}
	c.emitOp(binaryOps[op.Kind], op)
	return nil
}

// ternary evaluates both arms; the VM selects one by the condition.
func (c *Compiler) ternary(bool) error {
	op := c.prev
	if err := c.parsePrecedence(PrecTernary); err != nil {
		return err
	}
	if err := c.consume(token.Colon, "expected `:` after expression"); err != nil {
		return err
	}
	if err := c.parsePrecedence(PrecTernary); err != nil {
		return err
	}
	c.emitOp(OP_TERNARY, op)
	return nil
}

func (c *Compiler) and(bool) error {
	endJump := c.emitJump(OP_JUMP_FALSE)
	c.emitByte(OP_POP)
	if err := c.parsePrecedence(PrecAnd); err != nil {
		return err
	}
	return c.patchJump(endJump)
}

func (c *Compiler) or(bool) error {
	elseJump := c.emitJump(OP_JUMP_FALSE)
	endJump := c.emitJump(OP_JUMP)
	if err := c.patchJump(elseJump); err != nil {
		return err
	}
	c.emitByte(OP_POP)
	if err := c.parsePrecedence(PrecOr); err != nil {
		return err
	}
	return c.patchJump(endJump)
}

func (c *Compiler) literal(bool) error {
	switch c.prev.Kind {
	case token.True:
		c.emitByte(OP_TRUE)
	case token.False:
		c.emitByte(OP_FALSE)
	default:
		c.emitByte(OP_NONE)
	}
	return nil
}

func (c *Compiler) intLiteral(bool) error {
	n, err := strconv.ParseInt(c.prev.Lexeme, 10, 64)
	if err != nil {
		return c.errorAt(c.prev, "integer literal `%s` is out of range", c.prev.Lexeme)
	}
	return c.emitConstant(value.Int(n))
}

func (c *Compiler) floatLiteral(bool) error {
	f, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		return c.errorAt(c.prev, "invalid float literal `%s`", c.prev.Lexeme)
	}
	return c.emitConstant(value.Float(f))
}

func (c *Compiler) stringLiteral(bool) error {
	s, err := unescape(c.prev.Lexeme)
	if err != nil {
		return c.errorAt(c.prev, "%v", err)
	}
	return c.emitConstant(value.String(s))
}

func (c *Compiler) variable(canAssign bool) error {
	return c.namedVariable(c.prev, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) error {
	var getOp, setOp byte
	var operand uint16
	slot, local, ok := c.scope.resolveLocal(name.Lexeme)
	if ok {
		if !local.Initialized {
			return c.errorAt(name, "cannot read local variable `%s` in its own initializer", name.Lexeme)
		}
		getOp, setOp, operand = OP_GET_LOCAL, OP_SET_LOCAL, uint16(slot)
	} else {
		idx, err := c.globalConstant(name)
		if err != nil {
			return err
		}
		getOp, setOp, operand = OP_GET_GLOBAL, OP_SET_GLOBAL, idx
	}

	emit := func(op byte) {
		if ok {
			c.emitOpU8(op, byte(operand), name)
		} else {
			c.emitOpU16Span(op, operand, name)
		}
	}

	switch {
	case canAssign && c.match(token.Assign):
		if err := c.expression(); err != nil {
			return err
		}
		emit(setOp)
	case canAssign && c.isAssignOp(c.cur.Kind):
		c.advance()
		op := c.prev
		emit(getOp)
		if err := c.expression(); err != nil {
			return err
		}
		c.emitOp(compoundOps[op.Kind], op)
		emit(setOp)
	default:
		emit(getOp)
	}
	return nil
}

// globalConstant interns name as a Variable constant.
func (c *Compiler) globalConstant(name token.Token) (uint16, error) {
	if idx, ok := c.globals[name.Lexeme]; ok {
		return idx, nil
	}
	idx, err := c.chunk.AddConstantManual(value.Variable(name.Lexeme))
	if err != nil {
		return 0, c.errorAt(name, "%v", err)
	}
	c.globals[name.Lexeme] = uint16(idx)
	return uint16(idx), nil
}

// emission

func (c *Compiler) line() int {
	return c.prev.Span.Location.Line
}

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.line())
}

func (c *Compiler) emitBytes(b ...byte) {
	for _, x := range b {
		c.emitByte(x)
	}
}

// emitOp emits a single-byte instruction that can fail at run time and
// records the operator's span for it.
func (c *Compiler) emitOp(op byte, tok token.Token) {
	start := len(c.chunk.Code)
	c.chunk.Write(op, tok.Span.Location.Line)
	c.recordSpan(start, tok.Span)
}

func (c *Compiler) emitOpU8(op, operand byte, tok token.Token) {
	start := len(c.chunk.Code)
	c.chunk.Write(op, tok.Span.Location.Line)
	c.chunk.Write(operand, tok.Span.Location.Line)
	c.recordSpan(start, tok.Span)
}

func (c *Compiler) emitOpU16(op byte, operand uint16) {
	c.emitByte(op)
	c.chunk.WriteU16(operand, c.line())
}

func (c *Compiler) emitOpU16Span(op byte, operand uint16, tok token.Token) {
	start := len(c.chunk.Code)
	c.chunk.Write(op, tok.Span.Location.Line)
	c.chunk.WriteU16(operand, tok.Span.Location.Line)
	c.recordSpan(start, tok.Span)
}

func (c *Compiler) emitConstant(v value.Value) error {
	if _, err := c.chunk.AddConstant(v, c.line()); err != nil {
		return c.errorAt(c.prev, "%v", err)
	}
	return nil
}

// emitJump writes op with a placeholder operand and returns the operand's offset.
func (c *Compiler) emitJump(op byte) int {
	c.emitBytes(op, 0xff, 0xff)
	return len(c.chunk.Code) - 2
}

// patchJump points the jump whose operand is at pos to the current end of code.
func (c *Compiler) patchJump(pos int) error {
	jump := len(c.chunk.Code) - pos - 2
	if jump > 0xffff {
		return c.errorAt(c.prev, "too much code to jump over")
	}
	c.chunk.PatchU16(pos, uint16(jump))
	return nil
}

func (c *Compiler) emitLoop(start int) error {
	c.emitByte(OP_LOOP)
	offset := len(c.chunk.Code) + 2 - start
	if offset > 0xffff {
		return c.errorAt(c.prev, "loop body too large")
	}
	c.chunk.WriteU16(uint16(offset), c.line())
	return nil
}

func (c *Compiler) recordSpan(start int, span token.Span) {
	c.spans.Add(start, len(c.chunk.Code), span)
}

// joinSpan covers first through last when both sit on one line; otherwise
// it keeps to the first line.
func joinSpan(first, last token.Token) token.Span {
	sp := first.Span
	if last.Span.Location.Line == sp.Location.Line && last.Span.Location.End > sp.Location.End {
		sp.Location.End = last.Span.Location.End
	}
	return sp
}

// unescape strips the quotes from a string lexeme and resolves escapes.
func unescape(lexeme string) (string, error) {
	if len(lexeme) < 2 {
		return "", fmt.Errorf("malformed string literal")
	}
	body := lexeme[1 : len(lexeme)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("unfinished escape sequence")
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\', '"', '\'':
			sb.WriteByte(body[i])
		default:
			return "", fmt.Errorf("unknown escape sequence `\\%c`", body[i])
		}
	}
	return sb.String(), nil
}

package compiler

import "github.com/xirelogy/go-lox/internal/bytecode"

const (
	OP_CONSTANT       = bytecode.OP_CONSTANT
	OP_NONE           = bytecode.OP_NONE
	OP_TRUE           = bytecode.OP_TRUE
	OP_FALSE          = bytecode.OP_FALSE
	OP_POP            = bytecode.OP_POP
	OP_PRINT          = bytecode.OP_PRINT
	OP_RETURN         = bytecode.OP_RETURN
	OP_ADD            = bytecode.OP_ADD
	OP_SUBTRACT       = bytecode.OP_SUBTRACT
	OP_MULTIPLY       = bytecode.OP_MULTIPLY
	OP_DIVIDE         = bytecode.OP_DIVIDE
	OP_NEGATE         = bytecode.OP_NEGATE
	OP_NOT            = bytecode.OP_NOT
	OP_TERNARY        = bytecode.OP_TERNARY
	OP_EQUALS         = bytecode.OP_EQUALS
	OP_NOT_EQUALS     = bytecode.OP_NOT_EQUALS
	OP_LESS           = bytecode.OP_LESS
	OP_LESS_EQUALS    = bytecode.OP_LESS_EQUALS
	OP_GREATER        = bytecode.OP_GREATER
	OP_GREATER_EQUALS = bytecode.OP_GREATER_EQUALS
	OP_DEF_GLOBAL     = bytecode.OP_DEF_GLOBAL
	OP_GET_GLOBAL     = bytecode.OP_GET_GLOBAL
	OP_SET_GLOBAL     = bytecode.OP_SET_GLOBAL
	OP_GET_LOCAL      = bytecode.OP_GET_LOCAL
	OP_SET_LOCAL      = bytecode.OP_SET_LOCAL
	OP_JUMP           = bytecode.OP_JUMP
	OP_JUMP_FALSE     = bytecode.OP_JUMP_FALSE
	OP_LOOP           = bytecode.OP_LOOP
)

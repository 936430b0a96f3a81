package compiler

import "github.com/xirelogy/go-lox/internal/bytecode"

type Chunk = bytecode.Chunk
type Program = bytecode.Program
type SpanTable = bytecode.SpanTable

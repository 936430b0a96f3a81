package vm

import (
	"errors"
	"fmt"

	"github.com/xirelogy/go-lox/internal/bytecode"
	"github.com/xirelogy/go-lox/internal/diag"
	"github.com/xirelogy/go-lox/internal/token"
	"github.com/xirelogy/go-lox/internal/value"
)

var (
	// ErrUndefinedVariable is the cause of reads and writes of unknown globals.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrStackUnderflow is returned when an instruction lacks operands.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrStackOverflow is returned when the operand stack exceeds its limit.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrInstructionLimit is returned when a run exceeds SetInstructionLimit.
	ErrInstructionLimit = errors.New("instruction limit exceeded")
)

// TraceInfo describes a single instruction dispatch for debugging/tracing.
// Stack aliases the live operand stack and is only valid during the callback.
type TraceInfo struct {
	Op    byte
	IP    int
	Line  int
	Chunk *bytecode.Chunk
	Stack []value.Value
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// RuntimeError carries source information for VM failures.
type RuntimeError struct {
	Message string
	File    string
	Line    int
	IP      int
	Op      byte
	// Span is the narrowest recorded source span covering IP, if any.
	Span  *token.Span
	Cause error
}

func (e *RuntimeError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	default:
		return e.Message
	}
}

// Unwrap exposes the original error, if any.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Diagnostic converts e for rendering, degrading to a line-only pointer
// when no span was recorded for the failing instruction.
func (e *RuntimeError) Diagnostic() *diag.Diagnostic {
	if e.Span != nil {
		return diag.At(*e.Span, "%s", e.Message)
	}
	return diag.AtLine(e.File, e.Line, "%s", e.Message)
}

func (vm *VM) errorf(offset int, op byte, cause error, format string, args ...any) error {
	return vm.newRuntimeError(offset, op, fmt.Sprintf(format, args...), cause)
}

func (vm *VM) wrapError(offset int, op byte, err error) error {
	if err == nil {
		return nil
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return err
	}
	return vm.newRuntimeError(offset, op, err.Error(), err)
}

func (vm *VM) newRuntimeError(offset int, op byte, msg string, cause error) *RuntimeError {
	e := &RuntimeError{
		Message: msg,
		IP:      offset,
		Op:      op,
		Cause:   cause,
	}
	if vm.program == nil {
		return e
	}
	e.File = vm.program.File
	e.Line = vm.program.Chunk.GetLine(offset)
	if sp, ok := vm.program.Spans.Lookup(offset); ok {
		e.Span = &sp
	}
	vm.log.Debugf("runtime error at %04d: %s", offset, msg)
	return e
}

func (vm *VM) trace(offset int, op byte) {
	if vm.traceHook == nil {
		return
	}
	vm.traceHook(TraceInfo{
		Op:    op,
		IP:    offset,
		Line:  vm.chunk.GetLine(offset),
		Chunk: vm.chunk,
		Stack: vm.stack,
	})
}

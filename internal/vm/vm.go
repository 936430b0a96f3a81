package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/xirelogy/go-lox/internal/bytecode"
	"github.com/xirelogy/go-lox/internal/value"
)

// VM is a stack-based bytecode interpreter. Globals outlive individual runs.
type VM struct {
	program   *bytecode.Program
	chunk     *bytecode.Chunk
	ip        int
	stack     []value.Value
	globals   map[string]value.Value
	out       io.Writer
	maxStack  int
	traceHook TraceHook
	instLimit int
	instCount int
	log       commonlog.Logger
}

const defaultMaxStack = 1024

// New constructs an empty VM instance writing program output to stdout.
func New() *VM {
	return &VM{
		stack:    make([]value.Value, 0, 256),
		globals:  make(map[string]value.Value),
		out:      os.Stdout,
		maxStack: defaultMaxStack,
		log:      commonlog.GetLogger("lox.vm"),
	}
}

// SetOutput redirects print statements.
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// SetTraceHook registers a callback for instruction-level tracing.
func (vm *VM) SetTraceHook(h TraceHook) {
	vm.traceHook = h
}

// SetInstructionLimit caps the number of instructions executed per Run (0 for unlimited).
func (vm *VM) SetInstructionLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	vm.instLimit = limit
}

// SetMaxStack caps the operand stack depth. Values below 1 restore the default.
func (vm *VM) SetMaxStack(n int) {
	if n < 1 {
		n = defaultMaxStack
	}
	vm.maxStack = n
}

// ResetState clears transient execution state (ip, stack). Globals are kept.
func (vm *VM) ResetState() {
	vm.ip = 0
	vm.stack = vm.stack[:0]
	vm.instCount = 0
}

// Reset clears execution state and every global.
func (vm *VM) Reset() {
	vm.ResetState()
	vm.globals = make(map[string]value.Value)
}

// Run executes prog until OP_RETURN, the end of code, or the first error.
// The VM stays usable after a failed run.
func (vm *VM) Run(prog *bytecode.Program) error {
	vm.ResetState()
	if prog == nil || prog.Chunk == nil {
		return fmt.Errorf("nil program")
	}
	vm.program = prog
	vm.chunk = prog.Chunk
	vm.log.Debugf("run %s: %d bytes, %d constants", prog.File, len(vm.chunk.Code), len(vm.chunk.Consts))
	err := vm.run()
	if err != nil {
		vm.stack = vm.stack[:0]
	}
	return err
}

func (vm *VM) run() error {
	code := vm.chunk.Code
	for {
		if vm.ip >= len(code) {
			return nil
		}
		offset := vm.ip
		op := code[offset]
		info, known := bytecode.LookupOp(op)
		if !known {
			return vm.errorf(offset, op, nil, "unknown opcode 0x%02x", op)
		}
		if offset+bytecode.InstructionLen(op) > len(code) {
			return vm.errorf(offset, op, nil, "truncated %s instruction", info.Name)
		}
		vm.ip++
		vm.instCount++
		if vm.instLimit > 0 && vm.instCount > vm.instLimit {
			return vm.errorf(offset, op, ErrInstructionLimit, "instruction limit exceeded")
		}
		if need := stackNeeds[op]; len(vm.stack) < need {
			return vm.errorf(offset, op, ErrStackUnderflow, "stack underflow: %s needs %d operand(s), have %d", info.Name, need, len(vm.stack))
		}
		if stackGrows[op] && len(vm.stack) >= vm.maxStack {
			return vm.errorf(offset, op, ErrStackOverflow, "stack overflow (limit %d)", vm.maxStack)
		}
		vm.trace(offset, op)

		switch op {
		case bytecode.OP_CONSTANT:
			idx := vm.readU16()
			if int(idx) >= len(vm.chunk.Consts) {
				return vm.errorf(offset, op, nil, "constant index %d out of range", idx)
			}
			vm.push(vm.chunk.Consts[idx])
		case bytecode.OP_NONE:
			vm.push(value.None())
		case bytecode.OP_TRUE:
			vm.push(value.Bool(true))
		case bytecode.OP_FALSE:
			vm.push(value.Bool(false))
		case bytecode.OP_POP:
			vm.pop()
		case bytecode.OP_PRINT:
			v := vm.pop()
			if _, err := fmt.Fprintln(vm.out, v.String()); err != nil {
				return vm.wrapError(offset, op, err)
			}
		case bytecode.OP_RETURN:
			return nil
		case bytecode.OP_ADD, bytecode.OP_SUBTRACT, bytecode.OP_MULTIPLY, bytecode.OP_DIVIDE:
			b := vm.pop()
			a := vm.pop()
			res, err := arith(op, a, b)
			if err != nil {
				return vm.wrapError(offset, op, err)
			}
			vm.push(res)
		case bytecode.OP_NEGATE:
			res, err := value.Negate(vm.pop())
			if err != nil {
				return vm.wrapError(offset, op, err)
			}
			vm.push(res)
		case bytecode.OP_NOT:
			vm.push(value.Not(vm.pop()))
		case bytecode.OP_TERNARY:
			falsey := vm.pop()
			truthy := vm.pop()
			cond := vm.pop()
			if value.Truthy(cond) {
				vm.push(truthy)
			} else {
				vm.push(falsey)
			}
		case bytecode.OP_EQUALS, bytecode.OP_NOT_EQUALS:
			b := vm.pop()
			a := vm.pop()
			if err := value.Equatable(a, b); err != nil {
				return vm.wrapError(offset, op, err)
			}
			eq := value.Equal(a, b)
			vm.push(value.Bool(eq == (op == bytecode.OP_EQUALS)))
		case bytecode.OP_LESS, bytecode.OP_LESS_EQUALS, bytecode.OP_GREATER, bytecode.OP_GREATER_EQUALS:
			b := vm.pop()
			a := vm.pop()
			if err := value.Comparable(a, b); err != nil {
				return vm.wrapError(offset, op, err)
			}
			vm.push(value.Bool(compare(op, a, b)))
		case bytecode.OP_DEF_GLOBAL:
			name, err := vm.readName(offset, op)
			if err != nil {
				return err
			}
			vm.globals[name] = vm.pop()
		case bytecode.OP_GET_GLOBAL:
			name, err := vm.readName(offset, op)
			if err != nil {
				return err
			}
			v, ok := vm.globals[name]
			if !ok {
				return vm.errorf(offset, op, ErrUndefinedVariable, "undefined variable `%s`", name)
			}
			vm.push(v)
		case bytecode.OP_SET_GLOBAL:
			name, err := vm.readName(offset, op)
			if err != nil {
				return err
			}
			if _, ok := vm.globals[name]; !ok {
				return vm.errorf(offset, op, ErrUndefinedVariable, "undefined variable `%s`", name)
			}
			// assignment is an expression: its value stays on the stack
			vm.globals[name] = vm.peek()
		case bytecode.OP_GET_LOCAL:
			slot := int(vm.readU8())
			if slot >= len(vm.stack) {
				return vm.errorf(offset, op, ErrStackUnderflow, "local slot %d out of range", slot)
			}
			vm.push(vm.stack[slot])
		case bytecode.OP_SET_LOCAL:
			slot := int(vm.readU8())
			if slot >= len(vm.stack) {
				return vm.errorf(offset, op, ErrStackUnderflow, "local slot %d out of range", slot)
			}
			vm.stack[slot] = vm.peek()
		case bytecode.OP_JUMP:
			off := vm.readU16()
			vm.ip += int(off)
		case bytecode.OP_JUMP_FALSE:
			off := vm.readU16()
			// the condition stays for the Pop that follows on both paths
			if !value.Truthy(vm.peek()) {
				vm.ip += int(off)
			}
		case bytecode.OP_LOOP:
			off := int(vm.readU16())
			if off > vm.ip {
				return vm.errorf(offset, op, nil, "loop target %d out of range", vm.ip-off)
			}
			vm.ip -= off
		}
	}
}

// stackNeeds is the number of operands each opcode consumes or inspects.
var stackNeeds = map[byte]int{
	bytecode.OP_POP:            1,
	bytecode.OP_PRINT:          1,
	bytecode.OP_ADD:            2,
	bytecode.OP_SUBTRACT:       2,
	bytecode.OP_MULTIPLY:       2,
	bytecode.OP_DIVIDE:         2,
	bytecode.OP_NEGATE:         1,
	bytecode.OP_NOT:            1,
	bytecode.OP_TERNARY:        3,
	bytecode.OP_EQUALS:         2,
	bytecode.OP_NOT_EQUALS:     2,
	bytecode.OP_LESS:           2,
	bytecode.OP_LESS_EQUALS:    2,
	bytecode.OP_GREATER:        2,
	bytecode.OP_GREATER_EQUALS: 2,
	bytecode.OP_DEF_GLOBAL:     1,
	bytecode.OP_SET_GLOBAL:     1,
	bytecode.OP_SET_LOCAL:      1,
	bytecode.OP_JUMP_FALSE:     1,
}

var stackGrows = map[byte]bool{
	bytecode.OP_CONSTANT:   true,
	bytecode.OP_NONE:       true,
	bytecode.OP_TRUE:       true,
	bytecode.OP_FALSE:      true,
	bytecode.OP_GET_GLOBAL: true,
	bytecode.OP_GET_LOCAL:  true,
}

func arith(op byte, a, b value.Value) (value.Value, error) {
	switch op {
	case bytecode.OP_ADD:
		return value.Add(a, b)
	case bytecode.OP_SUBTRACT:
		return value.Subtract(a, b)
	case bytecode.OP_MULTIPLY:
		return value.Multiply(a, b)
	default:
		return value.Divide(a, b)
	}
}

func compare(op byte, a, b value.Value) bool {
	switch op {
	case bytecode.OP_LESS:
		return value.Less(a, b)
	case bytecode.OP_LESS_EQUALS:
		return value.LessEqual(a, b)
	case bytecode.OP_GREATER:
		return value.Greater(a, b)
	default:
		return value.GreaterEqual(a, b)
	}
}

func (vm *VM) readName(offset int, op byte) (string, error) {
	idx := vm.readU16()
	if int(idx) >= len(vm.chunk.Consts) {
		return "", vm.errorf(offset, op, nil, "constant index %d out of range", idx)
	}
	c := vm.chunk.Consts[idx]
	if c.Kind != value.KindVariable {
		return "", vm.errorf(offset, op, nil, "global name constant is %s, not identifier", c.TypeName())
	}
	return c.Str, nil
}

func (vm *VM) readU8() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readU16() uint16 {
	v := vm.chunk.ReadU16(vm.ip)
	vm.ip += 2
	return v
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() value.Value {
	if len(vm.stack) == 0 {
		return value.None()
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek() value.Value {
	if len(vm.stack) == 0 {
		return value.None()
	}
	return vm.stack[len(vm.stack)-1]
}

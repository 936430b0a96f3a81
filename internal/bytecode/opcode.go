package bytecode

// OpCode enumerates bytecode operations.
// Multi-byte operands are big-endian.
const (
	OP_CONSTANT byte = iota // u16 const index
	OP_NONE
	OP_TRUE
	OP_FALSE
	OP_POP
	OP_PRINT
	OP_RETURN
	_ // reserved

	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_NEGATE
	OP_NOT
	OP_TERNARY
	_ // reserved

	OP_EQUALS
	OP_NOT_EQUALS
	OP_LESS
	OP_LESS_EQUALS
	OP_GREATER
	OP_GREATER_EQUALS
	_ // reserved
	_ // reserved

	OP_DEF_GLOBAL // u16 const index of a Variable
	OP_GET_GLOBAL // u16 const index of a Variable
	OP_SET_GLOBAL // u16 const index of a Variable
	_             // reserved
	_             // reserved
	_             // reserved
	_             // reserved
	_             // reserved

	OP_GET_LOCAL // u8 slot
	OP_SET_LOCAL // u8 slot
	_            // reserved
	_            // reserved
	_            // reserved
	_            // reserved
	_            // reserved
	_            // reserved

	OP_JUMP       // u16 forward offset
	OP_JUMP_FALSE // u16 forward offset
	OP_LOOP       // u16 backward offset
)

// OpInfo describes the name and operand width of an opcode.
type OpInfo struct {
	Name string
	// Operand is the number of operand bytes following the opcode.
	Operand int
}

var opInfos = map[byte]OpInfo{
	OP_CONSTANT:       {"OP_CONSTANT", 2},
	OP_NONE:           {"OP_NONE", 0},
	OP_TRUE:           {"OP_TRUE", 0},
	OP_FALSE:          {"OP_FALSE", 0},
	OP_POP:            {"OP_POP", 0},
	OP_PRINT:          {"OP_PRINT", 0},
	OP_RETURN:         {"OP_RETURN", 0},
	OP_ADD:            {"OP_ADD", 0},
	OP_SUBTRACT:       {"OP_SUBTRACT", 0},
	OP_MULTIPLY:       {"OP_MULTIPLY", 0},
	OP_DIVIDE:         {"OP_DIVIDE", 0},
	OP_NEGATE:         {"OP_NEGATE", 0},
	OP_NOT:            {"OP_NOT", 0},
	OP_TERNARY:        {"OP_TERNARY", 0},
	OP_EQUALS:         {"OP_EQUALS", 0},
	OP_NOT_EQUALS:     {"OP_NOT_EQUALS", 0},
	OP_LESS:           {"OP_LESS", 0},
	OP_LESS_EQUALS:    {"OP_LESS_EQUALS", 0},
	OP_GREATER:        {"OP_GREATER", 0},
	OP_GREATER_EQUALS: {"OP_GREATER_EQUALS", 0},
	OP_DEF_GLOBAL:     {"OP_DEF_GLOBAL", 2},
	OP_GET_GLOBAL:     {"OP_GET_GLOBAL", 2},
	OP_SET_GLOBAL:     {"OP_SET_GLOBAL", 2},
	OP_GET_LOCAL:      {"OP_GET_LOCAL", 1},
	OP_SET_LOCAL:      {"OP_SET_LOCAL", 1},
	OP_JUMP:           {"OP_JUMP", 2},
	OP_JUMP_FALSE:     {"OP_JUMP_FALSE", 2},
	OP_LOOP:           {"OP_LOOP", 2},
}

// LookupOp returns the metadata for op.
func LookupOp(op byte) (OpInfo, bool) {
	info, ok := opInfos[op]
	return info, ok
}

// InstructionLen returns the encoded length of the instruction starting with op,
// or 1 for an unknown opcode.
func InstructionLen(op byte) int {
	if info, ok := opInfos[op]; ok {
		return 1 + info.Operand
	}
	return 1
}

package bytecode

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xirelogy/go-lox/internal/value"
)

// Disassembler formats bytecode as a readable assembly-style dump.
// It never modifies the chunk it reads.
type Disassembler struct {
	w io.Writer
}

// NewDisassembler constructs a disassembler that writes to w.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w}
}

// Disassemble emits a header followed by every instruction in chunk.
func (d *Disassembler) Disassemble(label string, chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	if label == "" {
		label = "<script>"
	}
	fmt.Fprintf(d.w, "== %s (%d bytes, %d constants) ==\n", label, len(chunk.Code), len(chunk.Consts))
	for offset := 0; offset < len(chunk.Code); {
		next, err := d.instruction(chunk, offset)
		if err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// DisassembleInstruction prints the instruction at offset and returns the
// offset of the next one. Malformed instructions are printed as such and
// skipped by their encoded length.
func (d *Disassembler) DisassembleInstruction(chunk *Chunk, offset int) int {
	next, err := d.instruction(chunk, offset)
	if err != nil {
		fmt.Fprintf(d.w, "%04d <%v>\n", offset, err)
		if offset < 0 || offset >= len(chunk.Code) {
			return len(chunk.Code)
		}
		return min(offset+InstructionLen(chunk.Code[offset]), len(chunk.Code))
	}
	return next
}

func (d *Disassembler) instruction(chunk *Chunk, offset int) (int, error) {
	if offset < 0 || offset >= len(chunk.Code) {
		return 0, fmt.Errorf("offset %d out of range", offset)
	}
	lineStr := "|"
	if !chunk.CheckPrevious(offset) {
		if line := chunk.GetLine(offset); line > 0 {
			lineStr = strconv.Itoa(line)
		} else {
			lineStr = "-"
		}
	}
	op := chunk.Code[offset]
	name := fmt.Sprintf("OP_0x%02X", op)
	if info, ok := LookupOp(op); ok {
		name = info.Name
	}
	ip := offset + 1
	detail, err := decodeOperands(op, chunk, offset, &ip)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(d.w, "%04d %4s %-16s", offset, lineStr, name)
	if detail != "" {
		fmt.Fprintf(d.w, " %s", detail)
	}
	fmt.Fprintln(d.w)
	return ip, nil
}

func decodeOperands(op byte, chunk *Chunk, offset int, ip *int) (string, error) {
	code := chunk.Code
	switch op {
	case OP_CONSTANT:
		idx, err := readU16(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d ; const[%d]=%s", idx, idx, formatConstRef(chunk, idx)), nil
	case OP_DEF_GLOBAL, OP_GET_GLOBAL, OP_SET_GLOBAL:
		idx, err := readU16(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d ; name=%s", idx, formatConstRef(chunk, idx)), nil
	case OP_GET_LOCAL, OP_SET_LOCAL:
		slot, err := readU8(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", slot), nil
	case OP_JUMP, OP_JUMP_FALSE:
		off, err := readU16(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d ; %d -> %d", off, offset, *ip+int(off)), nil
	case OP_LOOP:
		off, err := readU16(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d ; %d -> %d", off, offset, *ip-int(off)), nil
	default:
		return "", nil
	}
}

func readU8(code []byte, ip *int) (byte, error) {
	if *ip >= len(code) {
		return 0, fmt.Errorf("unexpected end of bytecode")
	}
	val := code[*ip]
	*ip = *ip + 1
	return val, nil
}

func readU16(code []byte, ip *int) (uint16, error) {
	if *ip+1 >= len(code) {
		return 0, fmt.Errorf("unexpected end of bytecode")
	}
	hi := code[*ip]
	lo := code[*ip+1]
	*ip += 2
	return uint16(hi)<<8 | uint16(lo), nil
}

func formatConstRef(chunk *Chunk, idx uint16) string {
	if chunk == nil || int(idx) >= len(chunk.Consts) {
		return "<invalid>"
	}
	return FormatConst(chunk.Consts[idx])
}

// FormatConst renders a constant for listings; strings are quoted.
func FormatConst(v value.Value) string {
	switch v.Kind {
	case value.KindString:
		return strconv.Quote(v.Str)
	case value.KindVariable:
		return v.Str
	default:
		return v.String()
	}
}

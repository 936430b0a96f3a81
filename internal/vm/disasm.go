package vm

import (
	"fmt"
	"io"

	"github.com/xirelogy/go-lox/internal/bytecode"
)

// Disassemble emits the listing of the most recently run program.
func (vm *VM) Disassemble(w io.Writer) error {
	if vm == nil {
		return fmt.Errorf("nil VM")
	}
	if w == nil {
		return fmt.Errorf("nil writer")
	}
	if vm.program == nil {
		return fmt.Errorf("no program loaded")
	}
	return bytecode.NewDisassembler(w).Disassemble(vm.program.File, vm.program.Chunk)
}

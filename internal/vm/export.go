package vm

import (
	"sort"

	"github.com/xirelogy/go-lox/internal/value"
)

// Global looks up a defined global by name.
func (vm *VM) Global(name string) (value.Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// Globals lists the defined global names in sorted order.
func (vm *VM) Globals() []string {
	names := make([]string, 0, len(vm.globals))
	for name := range vm.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StackDepth reports the current operand stack size (0 between runs).
func (vm *VM) StackDepth() int {
	return len(vm.stack)
}

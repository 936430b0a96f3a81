package vm

// Duplicate returns a new VM with copied globals and configuration.
// Execution state (ip/stack) is reset in the duplicate. Values are plain
// scalars and immutable strings, so a shallow copy of the table isolates it.
func (vm *VM) Duplicate() *VM {
	if vm == nil {
		return nil
	}
	dup := New()
	dup.out = vm.out
	dup.maxStack = vm.maxStack
	dup.traceHook = vm.traceHook
	dup.instLimit = vm.instLimit
	for name, val := range vm.globals {
		dup.globals[name] = val
	}
	return dup
}

package compiler

import "github.com/xirelogy/go-lox/internal/token"

// maxLocals is the number of slots a u8 operand can address.
const maxLocals = 256

// Local is a block-scoped variable bound to a fixed stack slot.
type Local struct {
	Name        token.Token
	Depth       int
	Initialized bool
}

// scope tracks the active locals. A local's index is its stack slot.
type scope struct {
	locals []Local
	depth  int
}

func newScope() *scope {
	return &scope{}
}

func (s *scope) begin() {
	s.depth++
}

// end closes the innermost block and returns how many locals it dropped.
func (s *scope) end() int {
	s.depth--
	n := 0
	for len(s.locals) > 0 && s.locals[len(s.locals)-1].Depth > s.depth {
		s.locals = s.locals[:len(s.locals)-1]
		n++
	}
	return n
}

// declaredHere reports whether name is already a local of the innermost block.
func (s *scope) declaredHere(name string) bool {
	for i := len(s.locals) - 1; i >= 0; i-- {
		l := s.locals[i]
		if l.Depth < s.depth {
			return false
		}
		if l.Name.Lexeme == name {
			return true
		}
	}
	return false
}

// addLocal reserves the next slot for name. It reports false when the
// slots are exhausted.
func (s *scope) addLocal(name token.Token) bool {
	if len(s.locals) >= maxLocals {
		return false
	}
	s.locals = append(s.locals, Local{Name: name, Depth: s.depth})
	return true
}

func (s *scope) markInitialized() {
	if len(s.locals) > 0 {
		s.locals[len(s.locals)-1].Initialized = true
	}
}

// resolveLocal searches innermost first, so shadowing locals win.
func (s *scope) resolveLocal(name string) (slot int, local Local, ok bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].Name.Lexeme == name {
			return i, s.locals[i], true
		}
	}
	return -1, Local{}, false
}

package compiler

import (
	"errors"
	"fmt"

	"github.com/xirelogy/go-lox/internal/diag"
)

// ErrorList collects every syntax error reported during one compilation.
type ErrorList []*diag.Diagnostic

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

// errSyntax unwinds the current statement after a diagnostic was recorded.
var errSyntax = errors.New("syntax error")

// Package diag renders compile-time and run-time diagnostics against the
// source text they refer to.
package diag

import (
	"fmt"

	"github.com/xirelogy/go-lox/internal/token"
)

// Severity is the level of a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
	Debug
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Diagnostic is a single message tied to a source position. Span is nil when
// only the line is known; Line is 0 when neither is known.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     *token.Span
	File     string
	Line     int
}

// At builds an error diagnostic anchored at span.
func At(span token.Span, format string, args ...any) *Diagnostic {
	sp := span
	return &Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     &sp,
		File:     span.File,
		Line:     span.Location.Line,
	}
}

// AtLine builds an error diagnostic that only knows its line.
func AtLine(file string, line int, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		File:     file,
		Line:     line,
	}
}

// Pointer renders the file:line[:col] location, or "" when unknown.
func (d *Diagnostic) Pointer() string {
	switch {
	case d.Span != nil:
		return fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.Location.Line, d.Span.Location.Start+1)
	case d.Line > 0:
		return fmt.Sprintf("%s:%d", d.File, d.Line)
	default:
		return d.File
	}
}

func (d *Diagnostic) Error() string {
	if p := d.Pointer(); p != "" {
		return fmt.Sprintf("%s: %s", p, d.Message)
	}
	return d.Message
}

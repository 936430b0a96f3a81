// Package lox runs lox source text: it tokenizes, compiles to bytecode and
// executes on a stack VM whose globals persist between calls.
package lox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/xirelogy/go-lox/internal/bytecode"
	"github.com/xirelogy/go-lox/internal/compiler"
	"github.com/xirelogy/go-lox/internal/config"
	"github.com/xirelogy/go-lox/internal/diag"
	"github.com/xirelogy/go-lox/internal/lexer"
	"github.com/xirelogy/go-lox/internal/vm"
)

// InterpretResult is the outcome of one Interpret call.
type InterpretResult int

const (
	ResultOK InterpretResult = iota
	ResultCompileError
	ResultRuntimeError
)

func (r InterpretResult) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile error"
	case ResultRuntimeError:
		return "runtime error"
	default:
		return "unknown"
	}
}

// ExitCode maps r to a sysexits status: 0, 65 (EX_DATAERR) or 70 (EX_SOFTWARE).
func (r InterpretResult) ExitCode() int {
	switch r {
	case ResultOK:
		return 0
	case ResultCompileError:
		return 65
	default:
		return 70
	}
}

// ErrBusy is returned when an interpreter is used while already running.
var ErrBusy = errors.New("interpreter is busy")

// Interpreter drives lexer, compiler and VM. Globals defined by one
// Interpret call are visible to the next until Reset.
type Interpreter struct {
	core     *vm.VM
	opts     *config.Options
	out      io.Writer
	errOut   io.Writer
	renderer *diag.Renderer
	lastErr  error
	log      commonlog.Logger
	mu       sync.Mutex
	busy     bool
}

// New constructs an interpreter. A nil opts uses config.Default().
// Program output goes to stdout and diagnostics to stderr.
func New(opts *config.Options) *Interpreter {
	if opts == nil {
		opts = config.Default()
	}
	in := &Interpreter{
		core: vm.New(),
		opts: opts,
		out:  os.Stdout,
		log:  commonlog.GetLogger("lox"),
	}
	in.core.SetMaxStack(opts.MaxStack)
	in.core.SetInstructionLimit(opts.InstructionLimit)
	in.SetErrorOutput(os.Stderr)
	in.applyDebug()
	return in
}

// SetOutput redirects print statements and the token dump.
func (in *Interpreter) SetOutput(w io.Writer) {
	in.out = w
	in.core.SetOutput(w)
}

// SetErrorOutput redirects diagnostics and the debug trace.
func (in *Interpreter) SetErrorOutput(w io.Writer) {
	mode, err := diag.ParseColorMode(in.opts.Color)
	if err != nil {
		in.log.Warningf("%s, using auto", err)
	}
	in.errOut = w
	in.renderer = diag.NewRenderer(w, mode)
}

// LastError is the error behind the most recent failed Interpret, or nil.
func (in *Interpreter) LastError() error {
	return in.lastErr
}

func (in *Interpreter) acquire() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.busy {
		return ErrBusy
	}
	in.busy = true
	return nil
}

func (in *Interpreter) release() {
	in.mu.Lock()
	in.busy = false
	in.mu.Unlock()
}

// Interpret compiles and runs source. file names the source in diagnostics.
func (in *Interpreter) Interpret(file, source string) InterpretResult {
	if err := in.acquire(); err != nil {
		in.lastErr = err
		in.renderer.Render(&diag.Diagnostic{Severity: diag.Error, Message: err.Error()})
		return ResultRuntimeError
	}
	defer in.release()

	in.lastErr = nil
	in.renderer.AddSource(file, source)

	if in.opts.PrintTokens {
		in.dumpTokens(file, source)
	}

	prog, err := compiler.Compile(file, source)
	if err != nil {
		in.lastErr = err
		var list compiler.ErrorList
		if errors.As(err, &list) {
			in.renderer.RenderAll(list)
		} else {
			in.renderer.Render(diag.AtLine(file, 0, "%s", err))
		}
		in.log.Debugf("compile %s failed: %s", file, err)
		return ResultCompileError
	}
	in.log.Debugf("compiled %s: %d bytes, %d constants", file, len(prog.Chunk.Code), len(prog.Chunk.Consts))

	if err := in.core.Run(prog); err != nil {
		in.lastErr = err
		var rtErr *vm.RuntimeError
		if errors.As(err, &rtErr) {
			in.renderer.Render(rtErr.Diagnostic())
		} else {
			in.renderer.Render(&diag.Diagnostic{Severity: diag.Error, Message: err.Error()})
		}
		return ResultRuntimeError
	}
	return ResultOK
}

// Duplicate returns an independent interpreter with a copy of the globals
// and the same options and writers.
func (in *Interpreter) Duplicate() (*Interpreter, error) {
	if in == nil || in.core == nil {
		return nil, errors.New("nil interpreter")
	}
	if err := in.acquire(); err != nil {
		return nil, fmt.Errorf("cannot duplicate: %w", err)
	}
	defer in.release()

	dup := &Interpreter{
		core: in.core.Duplicate(),
		opts: in.opts,
		out:  in.out,
		log:  in.log,
	}
	dup.SetErrorOutput(in.errOut)
	dup.applyDebug()
	return dup, nil
}

// Reset clears every global.
func (in *Interpreter) Reset() error {
	if err := in.acquire(); err != nil {
		return err
	}
	defer in.release()
	in.core.Reset()
	return nil
}

// Globals lists the names of the defined globals.
func (in *Interpreter) Globals() []string {
	return in.core.Globals()
}

// Disassemble writes the listing of the last program that ran.
func (in *Interpreter) Disassemble(w io.Writer) error {
	return in.core.Disassemble(w)
}

func (in *Interpreter) dumpTokens(file, source string) {
	tokens, err := lexer.New(file, source).AllTokens()
	for _, tok := range tokens {
		fmt.Fprintf(in.out, "%4d %-14s %q\n", tok.Span.Location.Line, tok.Kind, tok.Lexeme)
	}
	if err != nil {
		fmt.Fprintf(in.out, "   - %-14s %s\n", "ERROR", err)
	}
}

// applyDebug installs the instruction trace when the debug option is set.
func (in *Interpreter) applyDebug() {
	if !in.opts.Debug {
		in.core.SetTraceHook(nil)
		return
	}
	in.core.SetTraceHook(func(info vm.TraceInfo) {
		var sb strings.Builder
		sb.WriteString("          ")
		for _, v := range info.Stack {
			sb.WriteString("[ ")
			sb.WriteString(bytecode.FormatConst(v))
			sb.WriteString(" ]")
		}
		fmt.Fprintln(in.errOut, sb.String())
		bytecode.NewDisassembler(in.errOut).DisassembleInstruction(info.Chunk, info.IP)
	})
}

// ReadSource reads a source file, decoding it from encoding ("utf-8" or
// "shift_jis") to UTF-8.
func ReadSource(path, encoding string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return string(data), nil
	case "shift_jis", "sjis":
		text, _, err := transform.String(japanese.ShiftJIS.NewDecoder(), string(data))
		if err != nil {
			return "", fmt.Errorf("cannot decode %s as shift_jis: %w", path, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	"github.com/xirelogy/go-lox"
	"github.com/xirelogy/go-lox/internal/lexer"
	"github.com/xirelogy/go-lox/internal/token"
)

const (
	replFile    = "<repl>"
	historyFile = ".lox_history"
	promptMain  = "lox> "
	promptCont  = "...> "
)

// lineReader is satisfied by *liner.State and by scanReader.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// scanReader reads lines from a non-terminal input, echoing the prompt.
type scanReader struct {
	scanner *bufio.Scanner
	w       io.Writer
}

func newScanReader(r io.Reader, w io.Writer) *scanReader {
	return &scanReader{scanner: bufio.NewScanner(r), w: w}
}

func (r *scanReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(r.w, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

type repl struct {
	in       *lox.Interpreter
	snapshot *lox.Interpreter
	w        io.Writer
	log      commonlog.Logger
}

// startREPL runs an interactive session on the terminal with line editing
// and history, or a plain line-by-line session when stdin is not a terminal.
func startREPL(in *lox.Interpreter) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		runREPL(in, newScanReader(os.Stdin, os.Stdout), os.Stdout)
		return
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	runREPL(in, &historyReader{ln}, os.Stdout)
}

// historyReader records every non-empty line it reads.
type historyReader struct {
	*liner.State
}

func (r *historyReader) Prompt(prompt string) (string, error) {
	line, err := r.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		r.State.AppendHistory(line)
	}
	return line, err
}

// runREPL reads statements until EOF or exit. Input is buffered while
// braces are unbalanced so blocks can span lines.
func runREPL(in *lox.Interpreter, lines lineReader, w io.Writer) {
	s := &repl{in: in, w: w, log: commonlog.GetLogger("lox.repl")}
	in.SetOutput(w)
	fmt.Fprintln(w, "lox REPL (type 'exit' to quit, ':help' for commands)")
	s.log.Info("session started")

	var buf strings.Builder
	for {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}
		line, err := lines.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if err != nil {
			s.log.Errorf("read: %s", err)
			break
		}

		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "exit" || trimmed == "quit" {
				break
			}
			if strings.HasPrefix(trimmed, ":") {
				s.command(trimmed)
				continue
			}
			if trimmed == "" {
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		if openBraces(buf.String()) > 0 {
			continue
		}
		res := s.in.Interpret(replFile, buf.String())
		s.log.Debugf("interpret: %s", res)
		buf.Reset()
	}
	fmt.Fprintln(w)
	s.log.Info("session ended")
}

func (s *repl) command(line string) {
	switch line {
	case ":help":
		fmt.Fprintln(s.w, ":globals   list defined globals")
		fmt.Fprintln(s.w, ":dis       disassemble the last input")
		fmt.Fprintln(s.w, ":reset     clear every global")
		fmt.Fprintln(s.w, ":snapshot  remember the current globals")
		fmt.Fprintln(s.w, ":restore   go back to the last snapshot")
	case ":globals":
		for _, name := range s.in.Globals() {
			fmt.Fprintln(s.w, name)
		}
	case ":dis":
		if err := s.in.Disassemble(s.w); err != nil {
			fmt.Fprintf(s.w, "Error: %v\n", err)
		}
	case ":reset":
		if err := s.in.Reset(); err != nil {
			fmt.Fprintf(s.w, "Error: %v\n", err)
		}
	case ":snapshot":
		snap, err := s.in.Duplicate()
		if err != nil {
			fmt.Fprintf(s.w, "Error: %v\n", err)
			return
		}
		s.snapshot = snap
	case ":restore":
		if s.snapshot == nil {
			fmt.Fprintln(s.w, "Error: no snapshot")
			return
		}
		// keep the snapshot reusable
		restored, err := s.snapshot.Duplicate()
		if err != nil {
			fmt.Fprintf(s.w, "Error: %v\n", err)
			return
		}
		restored.SetOutput(s.w)
		s.in = restored
	default:
		fmt.Fprintf(s.w, "Unknown command %s (try :help)\n", line)
	}
}

// openBraces is the number of unclosed '{' in src. Input that does not
// tokenize is reported as complete so the interpreter can diagnose it.
func openBraces(src string) int {
	tokens, err := lexer.New(replFile, src).AllTokens()
	if err != nil {
		return 0
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
	}
	return depth
}

package diag

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/width"
)

// ColorMode selects when ANSI colours are emitted.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode accepts "auto", "always" or "never". The empty string is auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q", s)
	}
}

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiGutter = "\033[1;34m"
)

func severityColor(s Severity) string {
	switch s {
	case Info:
		return "\033[1;36m"
	case Warning:
		return "\033[1;33m"
	case Error:
		return "\033[1;31m"
	case Fatal:
		return "\033[1;91m"
	default:
		return "\033[1;35m"
	}
}

// Renderer writes diagnostics with a source excerpt and caret underline.
type Renderer struct {
	w       io.Writer
	color   bool
	sources map[string]string
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, mode ColorMode) *Renderer {
	return &Renderer{
		w:       w,
		color:   useColor(w, mode),
		sources: make(map[string]string),
	}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AddSource registers in-memory source text for file. Files without a
// registered source are read back from disk when rendered.
func (r *Renderer) AddSource(file, src string) {
	r.sources[file] = src
}

func (r *Renderer) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

// Render writes one diagnostic.
func (r *Renderer) Render(d *Diagnostic) {
	fmt.Fprintf(r.w, "%s: %s\n", r.paint(severityColor(d.Severity), d.Severity.String()), r.paint(ansiBold, d.Message))

	line := d.Line
	if d.Span != nil {
		line = d.Span.Location.Line
	}
	if line <= 0 {
		return
	}
	fmt.Fprintf(r.w, " %s %s\n", r.paint(ansiGutter, "-->"), d.Pointer())

	file := d.File
	if d.Span != nil {
		file = d.Span.File
	}
	text, ok := r.sourceLine(file, line)
	if !ok {
		fmt.Fprintf(r.w, "could not read source for path `%s`\n", file)
		return
	}

	num := strconv.Itoa(line)
	pad := strings.Repeat(" ", len(num))
	fmt.Fprintf(r.w, "%s %s\n", pad, r.paint(ansiGutter, "|"))
	fmt.Fprintf(r.w, "%s %s %s\n", r.paint(ansiGutter, num), r.paint(ansiGutter, "|"), text)
	if d.Span == nil {
		return
	}
	lead, mark := caret(text, d.Span.Location.Start, d.Span.Location.End)
	fmt.Fprintf(r.w, "%s %s %s%s\n", pad, r.paint(ansiGutter, "|"), lead, r.paint(severityColor(d.Severity), mark))
}

// RenderAll writes every diagnostic in order.
func (r *Renderer) RenderAll(ds []*Diagnostic) {
	for _, d := range ds {
		r.Render(d)
	}
}

func (r *Renderer) sourceLine(file string, line int) (string, bool) {
	src, ok := r.sources[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false
		}
		src = string(data)
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[line-1], "\r"), true
}

// caret builds the padding and underline for the byte window [start, end)
// of text, measured in display columns. Tabs in the lead are kept so the
// underline lines up under a terminal's own tab stops.
func caret(text string, start, end int) (string, string) {
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	var lead strings.Builder
	for _, r := range text[:start] {
		if r == '\t' {
			lead.WriteByte('\t')
			continue
		}
		lead.WriteString(strings.Repeat(" ", runeWidth(r)))
	}
	n := 0
	if end > start {
		for _, r := range text[start:end] {
			n += runeWidth(r)
		}
	}
	if n < 1 {
		n = 1
	}
	return lead.String(), strings.Repeat("^", n)
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

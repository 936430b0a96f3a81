package bytecode

import (
	"errors"
	"fmt"

	"github.com/xirelogy/go-lox/internal/token"
	"github.com/xirelogy/go-lox/internal/value"
)

// MaxConstants is the size of the constant pool addressable by a u16 operand.
const MaxConstants = 1 << 16

// ErrTooManyConstants is returned when the constant pool is full.
var ErrTooManyConstants = errors.New("too many constants in one chunk")

// Chunk is a compiled bytecode sequence with its constant pool.
type Chunk struct {
	Code   []byte
	Consts []value.Value
	Lines  []LineInfo
}

// LineInfo maps the code range [Start, End) to a source line.
// Entries are contiguous and ordered by line.
type LineInfo struct {
	Line  int
	Start int
	End   int
}

// Write appends one byte and extends or creates the line entry covering it.
func (c *Chunk) Write(b byte, line int) {
	off := len(c.Code)
	c.Code = append(c.Code, b)
	if n := len(c.Lines); n == 0 || line > c.Lines[n-1].Line {
		c.Lines = append(c.Lines, LineInfo{Line: line, Start: off, End: off + 1})
		return
	}
	// a line that does not advance (an operator emitted after its
	// right operand) stays in the last entry to keep the table ordered
	c.Lines[len(c.Lines)-1].End = off + 1
}

// WriteU16 appends a big-endian u16 operand.
func (c *Chunk) WriteU16(v uint16, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// PatchU16 overwrites the u16 operand at offset.
func (c *Chunk) PatchU16(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

// ReadU16 decodes the u16 operand at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// AddConstant appends v to the pool and emits OP_CONSTANT referencing it.
func (c *Chunk) AddConstant(v value.Value, line int) (int, error) {
	idx, err := c.AddConstantManual(v)
	if err != nil {
		return 0, err
	}
	c.Write(OP_CONSTANT, line)
	c.WriteU16(uint16(idx), line)
	return idx, nil
}

// AddConstantManual appends v to the pool without emitting an instruction.
func (c *Chunk) AddConstantManual(v value.Value) (int, error) {
	if len(c.Consts) >= MaxConstants {
		return 0, ErrTooManyConstants
	}
	c.Consts = append(c.Consts, v)
	return len(c.Consts) - 1, nil
}

// GetLine resolves a code offset to its source line, or 0 when out of range.
func (c *Chunk) GetLine(offset int) int {
	for _, info := range c.Lines {
		if offset >= info.Start && offset < info.End {
			return info.Line
		}
	}
	return 0
}

// CheckPrevious reports whether offset and offset-1 share a source line.
func (c *Chunk) CheckPrevious(offset int) bool {
	if offset <= 0 {
		return false
	}
	line := c.GetLine(offset)
	return line != 0 && line == c.GetLine(offset-1)
}

// SpanEntry ties the code range [Start, End) to the source it was compiled from.
type SpanEntry struct {
	Start int
	End   int
	Span  token.Span
}

// SpanTable records statement and operation spans for runtime diagnostics.
type SpanTable struct {
	Entries []SpanEntry
}

// Add records a span for [start, end). Empty ranges are ignored.
func (t *SpanTable) Add(start, end int, span token.Span) {
	if end <= start {
		return
	}
	t.Entries = append(t.Entries, SpanEntry{Start: start, End: end, Span: span})
}

// Lookup returns the narrowest span covering offset.
func (t *SpanTable) Lookup(offset int) (token.Span, bool) {
	best := -1
	for i, e := range t.Entries {
		if offset < e.Start || offset >= e.End {
			continue
		}
		if best < 0 || e.End-e.Start < t.Entries[best].End-t.Entries[best].Start {
			best = i
		}
	}
	if best < 0 {
		return token.Span{}, false
	}
	return t.Entries[best].Span, true
}

// Program is the compiled form of one source unit.
type Program struct {
	File  string
	Chunk *Chunk
	Spans SpanTable
}

func (p *Program) String() string {
	return fmt.Sprintf("program %s (%d bytes, %d constants)", p.File, len(p.Chunk.Code), len(p.Chunk.Consts))
}

package lockedit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Range is a half-open interval [Start, Stop) of line indices.
type Range struct {
	Start, Stop int
}

// Span returns the Range [start, stop).
func Span(start, stop int) Range {
	return Range{Start: start, Stop: stop}
}

// Len returns the number of lines covered.
func (r Range) Len() int {
	return r.Stop - r.Start
}

// IsEmpty returns whether the range covers no line.
func (r Range) IsEmpty() bool {
	return r.Start >= r.Stop
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.Stop)
}

// Buffer is an in-memory, line-oriented text. Each line carries its own terminator.
//
// Replace is the only mutation primitive; everything else is sugar on top of it.
type Buffer struct {
	lines []string
}

// NewBuffer creates a Buffer holding a copy of lines.
func NewBuffer(lines ...string) *Buffer {
	return &Buffer{lines: slices.Clone(lines)}
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

func (b *Buffer) check(r Range) error {
	if r.Start < 0 || r.Start > r.Stop || r.Stop > len(b.lines) {
		return errors.Errorf("range %s out of bounds for buffer with %d lines", r, len(b.lines))
	}
	return nil
}

// Read returns a copy of the lines in r.
func (b *Buffer) Read(r Range) ([]string, error) {
	if err := b.check(r); err != nil {
		return nil, err
	}
	return slices.Clone(b.lines[r.Start:r.Stop]), nil
}

// Replace deletes the lines in r and splices lines in their place.
// Every later line moves by len(lines) - r.Len().
func (b *Buffer) Replace(r Range, lines []string) error {
	if err := b.check(r); err != nil {
		return err
	}
	newLines := make([]string, 0, len(b.lines)-r.Len()+len(lines))
	newLines = append(newLines, b.lines[:r.Start]...)
	newLines = append(newLines, lines...)
	newLines = append(newLines, b.lines[r.Stop:]...)
	b.lines = newLines
	return nil
}

// Insert adds lines before line at.
func (b *Buffer) Insert(at int, lines []string) error {
	return b.Replace(Span(at, at), lines)
}

// Append adds lines at the end of the buffer.
func (b *Buffer) Append(lines []string) {
	// Replacing the empty range at the end can't fail.
	_ = b.Replace(Span(len(b.lines), len(b.lines)), lines)
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	return slices.Clone(b.lines)
}

// String returns the concatenated text.
func (b *Buffer) String() string {
	return strings.Join(b.lines, "")
}

// SplitLines splits text into lines, each keeping its "\n" terminator. A trailing fragment without
// terminator is returned as its own line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

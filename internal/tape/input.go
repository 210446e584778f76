package tape

import (
	"bufio"
	"io"
	"strings"
)

// Input is the character source consumed by `,`. Next returns false once the
// source is exhausted and keeps returning false afterwards.
type Input interface {
	Next() (rune, bool)
}

// StringInput reads characters from a fixed string through a cursor that
// only moves forward.
type StringInput struct {
	text   []rune
	cursor int
}

var _ Input = (*StringInput)(nil)

// NewStringInput creates an input positioned at the first character of s.
func NewStringInput(s string) *StringInput {
	return &StringInput{text: []rune(s)}
}

// Next consumes one character.
func (in *StringInput) Next() (rune, bool) {
	if in.cursor >= len(in.text) {
		return 0, false
	}
	r := in.text[in.cursor]
	in.cursor++
	return r, true
}

// Consumed returns how many characters have been read.
func (in *StringInput) Consumed() int {
	return in.cursor
}

// Remaining returns how many characters are left.
func (in *StringInput) Remaining() int {
	return len(in.text) - in.cursor
}

// ReaderInput reads characters lazily from a stream, one rune per call.
// Read errors are treated as end of input.
type ReaderInput struct {
	r    io.RuneReader
	done bool
}

var _ Input = (*ReaderInput)(nil)

// NewReaderInput wraps r. Readers that are not already io.RuneReaders are
// buffered.
func NewReaderInput(r io.Reader) *ReaderInput {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &ReaderInput{r: rr}
}

// Next consumes one character.
func (in *ReaderInput) Next() (rune, bool) {
	if in.done {
		return 0, false
	}
	r, _, err := in.r.ReadRune()
	if err != nil {
		in.done = true
		return 0, false
	}
	return r, true
}

// Recorder wraps an Input and keeps every character it delivers. Feeding
// Consumed back as a StringInput reproduces the same reads, including the
// point where input runs out.
type Recorder struct {
	in       Input
	consumed strings.Builder
}

// NewRecorder wraps in.
func NewRecorder(in Input) *Recorder {
	return &Recorder{in: in}
}

// Next returns the next character of the wrapped input and records it.
func (r *Recorder) Next() (rune, bool) {
	c, ok := r.in.Next()
	if ok {
		r.consumed.WriteRune(c)
	}
	return c, ok
}

// Consumed returns the characters delivered so far.
func (r *Recorder) Consumed() string {
	return r.consumed.String()
}

package ir

import (
	"encoding/json"
	"strings"
)

// EndMarker is the text appended when a run reaches the end of its program.
const EndMarker = "EOF"

// Sink receives everything a run produces, in order.
//
// Output carries text from `.`, `?` and `%`. Diagnostic carries error text and
// must stay distinguishable from output. EndOfProgram is called once when the
// scan runs off the end of the stream; it is never called after a halt or an
// error.
type Sink interface {
	Output(text string) error
	Diagnostic(text string) error
	EndOfProgram() error
}

// SegmentKind distinguishes the three kinds of text a Sink receives.
type SegmentKind string

const (
	SegmentOutput     SegmentKind = "output"
	SegmentDiagnostic SegmentKind = "diagnostic"
	SegmentMarker     SegmentKind = "marker"
)

// Segment is one contiguous piece of a transcript.
type Segment struct {
	Kind SegmentKind `json:"kind" yaml:"kind"`
	Text string      `json:"text" yaml:"text"`
}

// Transcript is a Sink that records everything in order.
// Consecutive output writes are merged into a single segment. The trailing
// output segment is built in place and materialised on read, so recording
// n writes costs O(total length).
type Transcript struct {
	segments []Segment
	open     strings.Builder // output after the last closed segment
}

var _ Sink = (*Transcript)(nil)

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{segments: []Segment{}}
}

// Output appends produced text.
func (t *Transcript) Output(text string) error {
	if text == "" {
		return nil
	}
	if t.open.Len() == 0 {
		// Reopen an output segment closed by an earlier read.
		if n := len(t.segments); n > 0 && t.segments[n-1].Kind == SegmentOutput {
			t.open.WriteString(t.segments[n-1].Text)
			t.segments = t.segments[:n-1]
		}
	}
	t.open.WriteString(text)
	return nil
}

// Diagnostic appends one diagnostic message.
func (t *Transcript) Diagnostic(text string) error {
	t.closeOutput()
	t.segments = append(t.segments, Segment{Kind: SegmentDiagnostic, Text: text})
	return nil
}

// EndOfProgram appends the end marker.
func (t *Transcript) EndOfProgram() error {
	t.closeOutput()
	t.segments = append(t.segments, Segment{Kind: SegmentMarker, Text: EndMarker})
	return nil
}

func (t *Transcript) closeOutput() {
	if t.open.Len() == 0 {
		return
	}
	t.segments = append(t.segments, Segment{Kind: SegmentOutput, Text: t.open.String()})
	t.open.Reset()
}

// Segments returns the recorded segments in order. The slice is owned by
// the transcript.
func (t *Transcript) Segments() []Segment {
	t.closeOutput()
	if t.segments == nil {
		t.segments = []Segment{}
	}
	return t.segments
}

// transcriptJSON is the serialised form of a Transcript.
type transcriptJSON struct {
	Segments []Segment `json:"segments"`
}

// MarshalJSON implements json.Marshaler.
func (t *Transcript) MarshalJSON() ([]byte, error) {
	return json.Marshal(transcriptJSON{Segments: t.Segments()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var v transcriptJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.open.Reset()
	t.segments = v.Segments
	if t.segments == nil {
		t.segments = []Segment{}
	}
	return nil
}

// Stdout returns all produced output concatenated, diagnostics excluded.
func (t *Transcript) Stdout() string {
	var b strings.Builder
	for _, s := range t.Segments() {
		if s.Kind == SegmentOutput {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Diagnostics returns every diagnostic message in order.
func (t *Transcript) Diagnostics() []string {
	var out []string
	for _, s := range t.Segments() {
		if s.Kind == SegmentDiagnostic {
			out = append(out, s.Text)
		}
	}
	return out
}

// Last returns the final segment, or false if the transcript is empty.
func (t *Transcript) Last() (Segment, bool) {
	segments := t.Segments()
	if len(segments) == 0 {
		return Segment{}, false
	}
	return segments[len(segments)-1], true
}

// String renders the transcript for display. Diagnostics and the marker
// start on a fresh line and diagnostics are prefixed with "error: ".
func (t *Transcript) String() string {
	var b strings.Builder
	atLineStart := true
	for _, s := range t.Segments() {
		switch s.Kind {
		case SegmentOutput:
			b.WriteString(s.Text)
			atLineStart = strings.HasSuffix(s.Text, "\n")
		default:
			if !atLineStart {
				b.WriteByte('\n')
			}
			if s.Kind == SegmentDiagnostic {
				b.WriteString("error: ")
			}
			b.WriteString(s.Text)
			b.WriteByte('\n')
			atLineStart = true
		}
	}
	return b.String()
}

// Tee returns a Sink that forwards every call to each sink in order,
// stopping at the first error.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Output(text string) error {
	for _, s := range t {
		if err := s.Output(text); err != nil {
			return err
		}
	}
	return nil
}

func (t teeSink) Diagnostic(text string) error {
	for _, s := range t {
		if err := s.Diagnostic(text); err != nil {
			return err
		}
	}
	return nil
}

func (t teeSink) EndOfProgram() error {
	for _, s := range t {
		if err := s.EndOfProgram(); err != nil {
			return err
		}
	}
	return nil
}

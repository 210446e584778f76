package ir

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm migration.
const (
	DomainProgram    = "ybf/program/v2"
	DomainTranscript = "ybf/transcript/v2"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramHash identifies a program source together with the input it ran on.
// Two runs with the same hash must produce the same transcript, so source
// and input are hashed byte for byte: input is consumed per code point and
// Unicode normalisation would merge inputs that run differently.
//
// Each field is written as its decimal length, a colon and its bytes.
func ProgramHash(source, input string) (string, error) {
	var b bytes.Buffer
	for _, field := range []string{LanguageVersion, source, input} {
		b.WriteString(strconv.Itoa(len(field)))
		b.WriteByte(':')
		b.WriteString(field)
	}
	return hashWithDomain(DomainProgram, b.Bytes()), nil
}

// TranscriptHash identifies everything a run emitted, in order.
func TranscriptHash(t *Transcript) (string, error) {
	canonical, err := t.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("TranscriptHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTranscript, canonical), nil
}

// CanonicalJSON renders the transcript as canonical JSON with its text kept
// exactly as emitted. It is the form that is hashed and stored.
func (t *Transcript) CanonicalJSON() ([]byte, error) {
	return MarshalExact(map[string]any{"segments": t.CanonicalSegments()})
}

// CanonicalSegments returns the segments in the generic form accepted by
// MarshalCanonical, for embedding a transcript in a larger document.
func (t *Transcript) CanonicalSegments() []any {
	recorded := t.Segments()
	segments := make([]any, len(recorded))
	for i, s := range recorded {
		segments[i] = map[string]any{
			"kind": string(s.Kind),
			"text": s.Text,
		}
	}
	return segments
}

// MustProgramHash is like ProgramHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProgramHash(source, input string) string {
	h, err := ProgramHash(source, input)
	if err != nil {
		panic(err)
	}
	return h
}

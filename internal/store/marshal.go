package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/ybf/internal/ir"
)

// marshalTranscript converts a transcript to canonical JSON TEXT for storage.
func marshalTranscript(t *ir.Transcript) (string, error) {
	if t == nil {
		t = ir.NewTranscript()
	}
	data, err := t.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}
	return string(data), nil
}

// unmarshalTranscript parses stored transcript JSON.
func unmarshalTranscript(data string) (*ir.Transcript, error) {
	t := ir.NewTranscript()
	if err := json.Unmarshal([]byte(data), t); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}
	return t, nil
}

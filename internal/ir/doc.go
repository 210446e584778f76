// Package ir provides the shared vocabulary of the ybf interpreter.
//
// This package contains the types every other internal package agrees on:
// command tags, the preprocessed Program, halt reasons, the output Sink and
// its recording Transcript, plus canonical JSON and content hashes used to
// identify programs and transcripts across runs. ir imports nothing
// internal, so it stays the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - The instruction stream is a rune slice; offsets are rune offsets
//   - All JSON tags use snake_case
//   - Run ordering uses logical sequence numbers, never wall-clock time
package ir

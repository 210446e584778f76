// Package engine executes preprocessed yBrainfuck programs.
//
// ARCHITECTURE:
//
// Single Sequential Pass:
// A run is one left-to-right scan of the instruction stream driven by a
// program counter. Each rune is classified to an ir.Command and dispatched
// through a fixed table. Repeat-count literals and variable names are the
// only multi-rune tokens; their handlers scan ahead explicitly.
//
// Run Context:
// All mutable state of a run (tape, program counter, repeat count, loop
// stack, step count, first error) lives in one run value built fresh by
// Engine.Run and discarded when it returns. Nothing is shared between runs.
//
// Error Policy:
// Execution errors are fatal at the first occurrence. The engine writes the
// message to the sink's diagnostic channel, stops, and reports it in the
// Result. Declaration errors are handled earlier by package preproc, which
// accumulates them; RunSource forwards all of them to the sink before any
// instruction executes.
//
// Loop Control:
// The loop stack holds the offset of each open `[` itself, so `]` always
// jumps back to a condition check rather than into the body.
package engine

// Package tape implements the memory of a yBrainfuck run: a fixed array of
// byte cells with a movable position, the variable table that binds names to
// cell indices, and the input source consumed by the `,` command.
//
// Faults (overrun, undefined variable, exhausted input) are returned as
// *Fault values. A fault never clamps or repairs state: after an overrun the
// position stays out of range and the caller is expected to stop using the
// tape. The engine does exactly that.
package tape

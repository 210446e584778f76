package tape

import (
	"fmt"
	"regexp"

	"github.com/roach88/ybf/internal/ir"
)

var wellFormedName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]+$`)

// IsWellFormedName reports whether name may be declared by a program.
// Single-letter names are reserved for the built-ins.
func IsWellFormedName(name string) bool {
	return wellFormedName.MatchString(name)
}

// MaxDeclared is the number of user variables that still fit on the tape.
const MaxDeclared = ir.CellCount - len(ir.BuiltinVariables)

// Variables binds names to fixed cell indices.
//
// INVARIANTS:
//   - names[i] is bound to cell i
//   - built-ins occupy 0..51, declared names follow in declaration order
//   - the table never changes after construction
type Variables struct {
	names []string
	index map[string]int
}

// NewVariables builds the table from the built-ins and the declared names.
// Returns an error for a malformed or duplicate name, or when the names do
// not fit on the tape. The preprocessor reports these cases to the user;
// here they indicate a caller bug.
func NewVariables(declared []string) (*Variables, error) {
	if len(declared) > MaxDeclared {
		return nil, fmt.Errorf("too many variables: %d > %d", len(declared), MaxDeclared)
	}

	v := &Variables{
		names: make([]string, 0, len(ir.BuiltinVariables)+len(declared)),
		index: make(map[string]int, len(ir.BuiltinVariables)+len(declared)),
	}
	for _, r := range ir.BuiltinVariables {
		v.bind(string(r))
	}
	for _, name := range declared {
		if !IsWellFormedName(name) {
			return nil, fmt.Errorf("invalid variable name %q", name)
		}
		if _, dup := v.index[name]; dup {
			return nil, fmt.Errorf("duplicate variable name %q", name)
		}
		v.bind(name)
	}
	return v, nil
}

// MustVariables is like NewVariables but panics on error.
// Use only in tests or when names come from the preprocessor.
func MustVariables(declared ...string) *Variables {
	v, err := NewVariables(declared)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Variables) bind(name string) {
	v.index[name] = len(v.names)
	v.names = append(v.names, name)
}

// Lookup returns the cell index bound to name.
func (v *Variables) Lookup(name string) (int, bool) {
	i, ok := v.index[name]
	return i, ok
}

// NameAt returns the name bound to cell i, if any.
func (v *Variables) NameAt(i int) (string, bool) {
	if i < 0 || i >= len(v.names) {
		return "", false
	}
	return v.names[i], true
}

// Names returns every bound name in table order.
func (v *Variables) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of bound names.
func (v *Variables) Len() int {
	return len(v.names)
}

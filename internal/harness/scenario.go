package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/tape"
)

// Scenario defines a conformance test scenario: one program, its input,
// and what the run must produce.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the program source.
	Program string `yaml:"program,omitempty"`

	// ProgramFile is a path to the program source, relative to the
	// scenario file. Exactly one of Program and ProgramFile is set.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Input is the input string consumed by `,`.
	Input string `yaml:"input,omitempty"`

	// MaxSteps bounds the run; 0 means unlimited.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Expect describes the required outcome.
	Expect Expect `yaml:"expect"`
}

// Expect specifies the outcome of a scenario run.
// Unset fields are not checked.
type Expect struct {
	// Halt is the required halt reason: end, halt, error or rejected.
	Halt string `yaml:"halt"`

	// Output is the exact concatenated output, diagnostics excluded.
	Output *string `yaml:"output,omitempty"`

	// Diagnostics is the exact list of diagnostics in order.
	Diagnostics []string `yaml:"diagnostics,omitempty"`

	// DiagnosticsContain lists substrings that must each appear in some
	// diagnostic.
	DiagnosticsContain []string `yaml:"diagnostics_contain,omitempty"`

	// ErrorCode is the code of the error that ended the run.
	ErrorCode string `yaml:"error_code,omitempty"`

	// Cells maps a cell index or a variable name to its final value.
	Cells map[string]int `yaml:"cells,omitempty"`

	// Position is the final data pointer.
	Position *int `yaml:"position,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A program_file is read and stored into Program.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ProgramFile != "" {
		programPath := scenario.ProgramFile
		if !filepath.IsAbs(programPath) {
			programPath = filepath.Join(filepath.Dir(path), programPath)
		}
		src, err := os.ReadFile(programPath)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: program file: %w", err)
		}
		scenario.Program = string(src)
	}

	return scenario, nil
}

// ParseScenario decodes scenario YAML with strict field checking and
// validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the YAML files under dir in lexical order.
// A non-empty filter is a glob matched against the file name without its
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Program == "" && s.ProgramFile == "":
		return fmt.Errorf("one of program or program_file is required")
	case s.Program != "" && s.ProgramFile != "":
		return fmt.Errorf("program and program_file are mutually exclusive")
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	return validateExpect(&s.Expect)
}

func validateExpect(e *Expect) error {
	switch ir.HaltReason(e.Halt) {
	case ir.HaltEnd, ir.HaltExplicit, ir.HaltError, ir.HaltRejected:
	case "":
		return fmt.Errorf("expect.halt is required")
	default:
		return fmt.Errorf("expect.halt: unknown halt reason %q", e.Halt)
	}

	for key, value := range e.Cells {
		if value < 0 || value > 255 {
			return fmt.Errorf("expect.cells[%s]: value %d out of range 0..255", key, value)
		}
		if idx, err := strconv.Atoi(key); err == nil {
			if idx < tape.MinPosition || idx > tape.MaxPosition {
				return fmt.Errorf("expect.cells[%s]: index out of range", key)
			}
			continue
		}
		if !tape.IsWellFormedName(key) && !isBuiltin(key) {
			return fmt.Errorf("expect.cells[%s]: not a cell index or variable name", key)
		}
	}

	return nil
}

func isBuiltin(name string) bool {
	return len(name) == 1 && strings.Contains(ir.BuiltinVariables, name)
}

// Package config loads the optional ybf configuration file.
//
// The file is CUE. It is unified with a closed schema, so unknown fields and
// out-of-range values are rejected with CUE's own position-aware errors,
// and omitted fields take the schema defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultFile is the configuration file looked up in the working directory
// when no path is given.
const DefaultFile = "ybf.cue"

const schemaSource = `
#Config: {
	max_steps:  int & >=0 | *0
	format:     "text" | "json" | *"text"
	db?:        string
	log_file?:  string
	journal:    bool | *false
	end_marker: bool | *true
}
`

// Config holds settings shared by all commands. Command-line flags override
// these values.
type Config struct {
	// MaxSteps limits dispatched commands per run; 0 means unlimited.
	MaxSteps int `json:"max_steps"`

	// Format is the CLI output format, "text" or "json".
	Format string `json:"format"`

	// DB is the SQLite database used to record runs.
	DB string `json:"db,omitempty"`

	// LogFile receives a JSON copy of the log.
	LogFile string `json:"log_file,omitempty"`

	// Journal adds the systemd journal as a log destination.
	Journal bool `json:"journal"`

	// EndMarker controls whether the text renderer prints EOF at the end of
	// a program.
	EndMarker bool `json:"end_marker"`

	// Source is the file the config was read from, empty for defaults.
	Source string `json:"-"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		MaxSteps:  0,
		Format:    "text",
		EndMarker: true,
	}
}

// Load reads the configuration at path. An empty path means DefaultFile,
// which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return Config{}, err
	}
	cfg.Source = path
	return cfg, nil
}

// Parse validates CUE source against the schema and decodes it.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

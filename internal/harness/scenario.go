package harness

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Scenario describes a synthetic container and the expected load results.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files use it.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Version is the stream version as [major, minor].
	Version []uint16 `yaml:"version" json:"version"`

	// Endian is "little" (default) or "big". It only sets the header flag.
	Endian string `yaml:"endian,omitempty" json:"endian,omitempty"`

	// StdFloat selects 64-bit stdfloats.
	StdFloat bool `yaml:"stdfloat,omitempty" json:"stdfloat,omitempty"`

	// Interpreters lists type names that get a pass-through interpreter.
	Interpreters []string `yaml:"interpreters,omitempty" json:"interpreters,omitempty"`

	// Handles are registered in order; parents must come first.
	Handles []HandleSpec `yaml:"handles" json:"handles"`

	// Objects are written in order.
	Objects []ObjectSpec `yaml:"objects,omitempty" json:"objects,omitempty"`

	// FileData holds hex-encoded file data blocks.
	FileData []string `yaml:"file_data,omitempty" json:"file_data,omitempty"`

	Expect Expect `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// HandleSpec declares one type handle.
type HandleSpec struct {
	ID      uint16   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Parents []uint16 `yaml:"parents,omitempty" json:"parents,omitempty"`
}

// ObjectSpec declares one object record.
type ObjectSpec struct {
	ID      uint32 `yaml:"id" json:"id"`
	Handle  uint16 `yaml:"handle" json:"handle"`
	Payload string `yaml:"payload,omitempty" json:"payload,omitempty"`
}

// Expect lists what a reader must observe. Unset fields are not checked.
type Expect struct {
	Objects        *int                `yaml:"objects,omitempty" json:"objects,omitempty"`
	Handles        []string            `yaml:"handles,omitempty" json:"handles,omitempty"`
	UnknownHandles []string            `yaml:"unknown_handles,omitempty" json:"unknown_handles,omitempty"`
	Related        map[string][]string `yaml:"related,omitempty" json:"related,omitempty"`
	OfType         map[string][]uint32 `yaml:"of_type,omitempty" json:"of_type,omitempty"`
	Roundtrip      bool                `yaml:"roundtrip,omitempty" json:"roundtrip,omitempty"`
}

// LoadScenario reads a scenario file. The format follows the extension:
// .yaml and .yml are decoded strictly (unknown fields are rejected), .cue
// is validated against the embedded schema.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		scenario, err = ParseYAML(data)
	case ".cue":
		scenario, err = ParseCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

// LoadScenarios loads every scenario file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".cue":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ParseYAML decodes a YAML scenario.
func ParseYAML(data []byte) (*Scenario, error) {
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

// ParseCUE decodes a CUE scenario after unifying it with #Scenario.
// filename is used in error positions only.
func ParseCUE(data []byte, filename string) (*Scenario, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("schema violation: %w", err)
	}

	var scenario Scenario
	if err := unified.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Version) != 2 {
		return fmt.Errorf("version must be [major, minor], got %d values", len(s.Version))
	}
	switch strings.ToLower(s.Endian) {
	case "", "little", "big":
	default:
		return fmt.Errorf("endian must be little or big, got %q", s.Endian)
	}

	seen := make(map[uint16]bool, len(s.Handles))
	for i, h := range s.Handles {
		if h.ID == 0 {
			return fmt.Errorf("handles[%d]: id 0 is reserved", i)
		}
		if h.Name == "" {
			return fmt.Errorf("handles[%d]: name is required", i)
		}
		if seen[h.ID] {
			return fmt.Errorf("handles[%d]: duplicate id %d", i, h.ID)
		}
		for _, p := range h.Parents {
			if !seen[p] {
				return fmt.Errorf("handles[%d]: parent %d must be declared first", i, p)
			}
		}
		seen[h.ID] = true
	}

	ids := make(map[uint32]bool, len(s.Objects))
	for i, o := range s.Objects {
		if o.ID == 0 {
			return fmt.Errorf("objects[%d]: id 0 is reserved", i)
		}
		if ids[o.ID] {
			return fmt.Errorf("objects[%d]: duplicate id %d", i, o.ID)
		}
		if !seen[o.Handle] {
			return fmt.Errorf("objects[%d]: undeclared handle %d", i, o.Handle)
		}
		if _, err := hex.DecodeString(o.Payload); err != nil {
			return fmt.Errorf("objects[%d]: payload: %w", i, err)
		}
		ids[o.ID] = true
	}

	for i, d := range s.FileData {
		if _, err := hex.DecodeString(d); err != nil {
			return fmt.Errorf("file_data[%d]: %w", i, err)
		}
	}
	return nil
}

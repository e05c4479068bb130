// Package scenario loads scripted sequences of world edits and expectations from YAML and runs them against a
// World. Scenarios are validated against a JSON schema before they are decoded.
package scenario

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.schema.json
var schemaSource string

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("scenario.schema.json", schemaSource)
})

// Scenario is a named list of steps run in order against a fresh World.
type Scenario struct {
	Name           string `yaml:"name"`
	Seed           uint64 `yaml:"seed"`
	MaxUpdateDepth int    `yaml:"max_update_depth"`
	Steps          []Step `yaml:"steps"`
}

// Step is a single action of a Scenario. Exactly one of its fields is set.
type Step struct {
	Set      *Cell   `yaml:"set"`
	Place    *Cell   `yaml:"place"`
	Break    *Pos    `yaml:"break"`
	Activate *Pos    `yaml:"activate"`
	Tick     int     `yaml:"tick"`
	Expect   *Expect `yaml:"expect"`
}

// Pos is a position written as [x, y, z].
type Pos [3]int

// Cell is a state to set or place at a position.
type Cell struct {
	Pos   Pos    `yaml:"pos"`
	State string `yaml:"state"`
	Flags string `yaml:"flags"`
	Face  string `yaml:"face"`
}

// Expect is an expectation on the cell at Pos. If State is set, the cell must hold exactly that state. Every entry
// of Properties must match the property of the same name.
type Expect struct {
	Pos        Pos            `yaml:"pos"`
	State      string         `yaml:"state"`
	Properties map[string]any `yaml:"properties"`
}

func (p Pos) cube() cube.Pos {
	return cube.Pos(p)
}

// Load reads and parses the scenario file at the path passed.
func Load(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	sc, err := Parse(raw)
	if err != nil {
		return sc, fmt.Errorf("%v: %w", path, err)
	}
	return sc, nil
}

// Parse validates the YAML document passed against the scenario schema and decodes it.
func Parse(raw []byte) (Scenario, error) {
	var sc Scenario
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return sc, fmt.Errorf("decode scenario: %w", err)
	}
	if err := validate(doc); err != nil {
		return sc, err
	}
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return sc, fmt.Errorf("decode scenario: %w", err)
	}
	return sc, nil
}

// validate validates a decoded YAML document against the scenario schema. The document is converted to its JSON
// form first, so that numbers are represented the way the validator expects them.
func validate(doc any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert scenario: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("convert scenario: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	return nil
}

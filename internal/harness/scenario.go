package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/extsql/internal/entity"
)

// Scenario defines one manifest and what building it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifest is the path to a CUE directory, .cue or .yaml manifest.
	// Relative paths are resolved against the scenario file location.
	Manifest string `yaml:"manifest"`

	// Header lines are passed to the renderer.
	Header []string `yaml:"header,omitempty"`

	// Expect describes the build outcome.
	Expect Expect `yaml:"expect,omitempty"`

	// Assertions validate the plan and the rendered script.
	// Supported types: order_before, script_contains, resolves_to, node_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect is the expected build outcome.
type Expect struct {
	// Order is the exact installation order of descriptor names.
	Order []string `yaml:"order,omitempty"`

	// Error is the expected error code (e.g. UNRESOLVED_REFERENCE). Empty
	// means the build must succeed.
	Error string `yaml:"error,omitempty"`

	// Cycle is the expected cycle path for CYCLIC_DEPENDENCY.
	Cycle []string `yaml:"cycle,omitempty"`
}

// Assertion validates one property of a successful build.
type Assertion struct {
	// Type specifies the assertion type:
	// - "order_before": First is installed before Then
	// - "script_contains": the script contains Text
	// - "resolves_to": Entity's reference Ref resolved to Target
	// - "node_count": the plan has Count descriptors
	Type string `yaml:"type"`

	First string `yaml:"first,omitempty"`
	Then  string `yaml:"then,omitempty"`

	Text string `yaml:"text,omitempty"`

	Entity string `yaml:"entity,omitempty"`
	Ref    string `yaml:"ref,omitempty"`
	Target string `yaml:"target,omitempty"`

	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOrderBefore    = "order_before"
	AssertScriptContains = "script_contains"
	AssertResolvesTo     = "resolves_to"
	AssertNodeCount      = "node_count"
)

var validErrorCodes = map[string]bool{
	string(entity.ErrCodeDuplicateEntity):      true,
	string(entity.ErrCodeUnresolvedReference):  true,
	string(entity.ErrCodeCyclicDependency):     true,
	string(entity.ErrCodeMalformedDeclaration): true,
	string(entity.ErrCodeEmptyIdentifier):      true,
}

// LoadScenario reads and parses a scenario YAML file, resolving the
// manifest path relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the manifest path relative to basePath.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the manifest path BEFORE validation
	if scenario.Manifest != "" && !filepath.IsAbs(scenario.Manifest) && basePath != "" {
		scenario.Manifest = filepath.Join(basePath, scenario.Manifest)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	if _, err := os.Stat(s.Manifest); os.IsNotExist(err) {
		return fmt.Errorf("manifest not found: %s", s.Manifest)
	}

	if s.Expect.Error != "" {
		if !validErrorCodes[s.Expect.Error] {
			return fmt.Errorf("expect.error: unknown error code %q", s.Expect.Error)
		}
		if len(s.Expect.Order) > 0 || len(s.Assertions) > 0 {
			return fmt.Errorf("expect.error cannot be combined with expect.order or assertions")
		}
	}
	if len(s.Expect.Cycle) > 0 && s.Expect.Error != string(entity.ErrCodeCyclicDependency) {
		return fmt.Errorf("expect.cycle requires expect.error: %s", entity.ErrCodeCyclicDependency)
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOrderBefore:
		if a.First == "" || a.Then == "" {
			return fmt.Errorf("assertions[%d]: first and then are required for order_before", index)
		}
	case AssertScriptContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for script_contains", index)
		}
	case AssertResolvesTo:
		if a.Entity == "" || a.Ref == "" || a.Target == "" {
			return fmt.Errorf("assertions[%d]: entity, ref and target are required for resolves_to", index)
		}
	case AssertNodeCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for node_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

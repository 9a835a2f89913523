package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a test scenario: fixtures, commands with expected
// outcomes, and assertions on the final graph.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates. Optional.
	Description string `yaml:"description,omitempty"`

	// Backend selects the storage backend: memory (default), sqlite or
	// badger. sqlite and badger run in memory.
	Backend string `yaml:"backend,omitempty"`

	// Load lists N-Triples files to import before setup.
	// Paths are relative to the scenario file location.
	Load []string `yaml:"load,omitempty"`

	// Setup contains commands run before the steps.
	// Setup commands must succeed.
	Setup []string `yaml:"setup,omitempty"`

	// Steps contains the commands under test.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final graph and trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Scope is the blank node scope id used by Load. Defaults to
	// testutil.DefaultScope.
	Scope string `yaml:"scope,omitempty"`
}

// Step runs one command text, which may hold several commands.
type Step struct {
	Run string `yaml:"run"`

	// Expect specifies the expected outcome.
	// If nil, every command must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected command behavior.
type ExpectClause struct {
	// Error is a substring of the expected command error, e.g.
	// "UnsupportedOperator" or "syntax error".
	Error string `yaml:"error,omitempty"`

	// Items lists the expected get results in request order.
	Items []ExpectItem `yaml:"items,omitempty"`
}

// ExpectItem is the expected result for one get root.
type ExpectItem struct {
	ID string `yaml:"id"`

	// Nodes are the IRIs the pipeline yields, in order.
	Nodes []string `yaml:"nodes,omitempty"`

	// Error is a substring of the item error, e.g. "NOT_FOUND".
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final graph or trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "node_exists": the node can be read
	// - "node_missing": the node is not stored
	// - "attribute": the node has attribute key = value
	// - "history_count": the node has exactly count versions
	// - "trace_count": exactly count commands of kind ran
	Type string `yaml:"type"`

	// Node is the node IRI (all but trace_count).
	Node string `yaml:"node,omitempty"`

	// Key and Value are compared against displayed attribute text.
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Count is the expected number (history_count, trace_count).
	Count int `yaml:"count,omitempty"`

	// Kind is the command kind counted by trace_count.
	Kind string `yaml:"kind,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeExists   = "node_exists"
	AssertNodeMissing  = "node_missing"
	AssertAttribute    = "attribute"
	AssertHistoryCount = "history_count"
	AssertTraceCount   = "trace_count"
)

var backends = map[string]bool{"": true, "memory": true, "sqlite": true, "badger": true}

// LoadScenario reads and parses a scenario YAML file. Load paths are
// resolved relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving load paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Load {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Load[i] = filepath.Join(basePath, p)
		}
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

	if !backends[s.Backend] {
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, p := range s.Load {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("load file not found: %s", p)
		}
	}

	for i, cmd := range s.Setup {
		if cmd == "" {
			return fmt.Errorf("setup[%d]: command is required", i)
		}
	}

	for i, step := range s.Steps {
		if step.Run == "" {
			return fmt.Errorf("steps[%d]: run is required", i)
		}
		if step.Expect == nil {
			continue
		}
		for j, item := range step.Expect.Items {
			if item.ID == "" {
				return fmt.Errorf("steps[%d].expect.items[%d]: id is required", i, j)
			}
		}
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
	case AssertNodeExists, AssertNodeMissing:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for %s", index, a.Type)
		}
	case AssertAttribute:
		if a.Node == "" || a.Key == "" {
			return fmt.Errorf("assertions[%d]: node and key are required for attribute", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for attribute", index)
		}
	case AssertHistoryCount:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for history_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_count", index)
		}
	case AssertTraceCount:
		switch a.Kind {
		case EventPut, EventGet, EventLoad:
		default:
			return fmt.Errorf("assertions[%d]: kind must be put, get or load for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

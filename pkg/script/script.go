package script

import (
	"fmt"
	"os"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Operations understood by Run.
const (
	OpStamp     = "stamp"
	OpDevice    = "device"
	OpRegion    = "region"
	OpWalls     = "walls"
	OpDelete    = "delete"
	OpHideLabel = "hide_label"
	OpUndo      = "undo"
	OpRedo      = "redo"
	OpSettle    = "settle"
)

var knownOps = map[string]bool{
	OpStamp: true, OpDevice: true, OpRegion: true, OpWalls: true, OpDelete: true,
	OpHideLabel: true, OpUndo: true, OpRedo: true, OpSettle: true,
}

// Step is one tool invocation.
type Step struct {
	Op   string
	Args any
	Line int
}

// Script is a parsed editor script.
type Script struct {
	Workspace  string
	MaxHistory int
	Steps      []Step
}

type document struct {
	Workspace  string      `yaml:"workspace"`
	MaxHistory int         `yaml:"max_history"`
	Steps      []yaml.Node `yaml:"steps"`
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML script. A step is either a bare operation name ("undo") or a
// single-key mapping from the operation to its arguments.
func Parse(data []byte) (*Script, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScript, err)
	}
	s := &Script{Workspace: doc.Workspace, MaxHistory: doc.MaxHistory}
	for i := range doc.Steps {
		step, err := parseStep(&doc.Steps[i])
		if err != nil {
			return nil, fmt.Errorf("%w: step %d (line %d): %v", domain.ErrInvalidScript, i+1, doc.Steps[i].Line, err)
		}
		s.Steps = append(s.Steps, step)
	}
	return s, nil
}

func parseStep(node *yaml.Node) (Step, error) {
	step := Step{Line: node.Line}
	switch node.Kind {
	case yaml.ScalarNode:
		step.Op = node.Value
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return step, fmt.Errorf("expected exactly one operation, got %d", len(node.Content)/2)
		}
		step.Op = node.Content[0].Value
		if err := node.Content[1].Decode(&step.Args); err != nil {
			return step, err
		}
	default:
		return step, fmt.Errorf("unexpected step node")
	}
	if !knownOps[step.Op] {
		return step, fmt.Errorf("unknown operation %q", step.Op)
	}
	return step, nil
}

// Options returns the workspace options a script asks for.
func (s *Script) Options() []planner.Option {
	var opts []planner.Option
	if s.MaxHistory > 0 {
		opts = append(opts, planner.WithMaxHistory(s.MaxHistory))
	}
	return opts
}

// decode maps loosely typed YAML arguments onto a typed spec.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

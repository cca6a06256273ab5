package filter

import (
	"errors"
	"fmt"
	"io"

	"github.com/xy-planning-network/trailhead"
	"gopkg.in/yaml.v3"
)

// ruleDoc is the mapping form of a Rule in YAML.
type ruleDoc struct {
	Filter  ID             `yaml:"filter"`
	Flags   []string       `yaml:"flags"`
	Options map[string]any `yaml:"options"`
}

// UnmarshalYAML accepts either a bare filter identifier:
//
//	id: int
//
// or a mapping:
//
//	name: {filter: default, flags: [require_sequence]}
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*r = Rule{Filter: ID(value.Value)}
		return nil

	case yaml.MappingNode:
		var doc ruleDoc
		if err := value.Decode(&doc); err != nil {
			return err
		}

		var flags Flag
		for _, name := range doc.Flags {
			f, err := ParseFlag(name)
			if err != nil {
				return err
			}
			flags |= f
		}

		*r = Rule{Filter: doc.Filter, Flags: flags}
		if len(doc.Options) > 0 {
			r.Options = Options(doc.Options)
		}

		return nil

	default:
		return fmt.Errorf("line %d: rule must be a filter identifier or a mapping", value.Line)
	}
}

// LoadRules decodes a YAML document mapping field names to rules.
// An empty document yields empty Rules.
//
// LoadRules does not check filter identifiers; pass the result through [*Registry.Compile].
func LoadRules(r io.Reader) (Rules, error) {
	rules := make(Rules)
	err := yaml.NewDecoder(r).Decode(&rules)
	if errors.Is(err, io.EOF) {
		return rules, nil
	}

	if errors.Is(err, trailhead.ErrBadConfig) {
		return nil, fmt.Errorf("trailhead/filter: failed loading rules: %w", err)
	}

	if err != nil {
		return nil, fmt.Errorf("trailhead/filter: %w: failed loading rules: %s", trailhead.ErrBadFormat, err)
	}

	return rules, nil
}

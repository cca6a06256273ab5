package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

// An ID names a Filter in a Registry.
type ID string

const (
	Bool    ID = "bool"
	Default ID = "default"
	Email   ID = "email"
	Float   ID = "float"
	IP      ID = "ip"
	Int     ID = "int"
	Regexp  ID = "regexp"
	String  ID = "string"
	Trim    ID = "trim"
	URL     ID = "url"
	UUID    ID = "uuid"
)

// A Flag changes how a Rule treats its input.
type Flag uint

const (
	// RequireSequence validates every element of a sequence.
	// A non-sequence input, or any failing element, makes the whole field invalid.
	RequireSequence Flag = 1 << iota

	// ForceSequence wraps a scalar input in a one-element sequence,
	// then behaves as RequireSequence.
	ForceSequence
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{RequireSequence, "require_sequence"},
	{ForceSequence, "force_sequence"},
}

// Has asserts whether every bit of o is set in f.
func (f Flag) Has(o Flag) bool { return f&o == o }

func (f Flag) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}

	return strings.Join(names, "|")
}

// ParseFlag converts the name of a single Flag, as rendered by String, into a Flag.
func ParseFlag(name string) (Flag, error) {
	for _, fn := range flagNames {
		if strings.EqualFold(fn.name, strings.TrimSpace(name)) {
			return fn.flag, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown flag %q", trailhead.ErrBadConfig, name)
}

// Options parameterize a Filter, for example "min" and "max" for Int.
type Options map[string]any

// A Rule declares how a single named field is validated.
// A Rule holding only a Filter is equivalent to a bare filter identifier.
type Rule struct {
	Filter  ID
	Flags   Flag
	Options Options
}

// sequence asserts whether r validates its input element by element.
func (r Rule) sequence() bool {
	return r.Flags.Has(RequireSequence) || r.Flags.Has(ForceSequence)
}

// String renders r for error messages, e.g. "int; require_sequence".
func (r Rule) String() string {
	s := string(r.Filter)
	if r.Flags != 0 {
		s += "; " + r.Flags.String()
	}

	return s
}

// Rules maps field names to the Rule validating them.
type Rules map[string]Rule

// Clone returns a shallow copy of rs.
func (rs Rules) Clone() Rules {
	c := make(Rules, len(rs))
	for name, rule := range rs {
		c[name] = rule
	}

	return c
}

// Names returns the field names in rs in lexical order.
func (rs Rules) Names() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

package filter

import (
	"fmt"

	"github.com/xy-planning-network/trailhead"
)

// A Filter validates or sanitizes one scalar value.
// Apply returns the resulting value and whether validation succeeded.
type Filter interface {
	Apply(raw any, opts Options) (any, bool)
}

// Func adapts an ordinary function into a Filter.
type Func func(raw any, opts Options) (any, bool)

// Apply calls f(raw, opts).
func (f Func) Apply(raw any, opts Options) (any, bool) { return f(raw, opts) }

// An OptionsCompiler is a Filter that checks its Options ahead of validation,
// returning the normalized Options Apply receives.
type OptionsCompiler interface {
	CompileOptions(opts Options) (Options, error)
}

// A Registry maps IDs to Filters.
//
// A Registry is meant to be populated at process start;
// once populated, it is safe for concurrent use by readers.
type Registry struct {
	filters map[ID]Filter
}

// NewRegistry constructs a Registry holding every built-in filter.
func NewRegistry() *Registry {
	reg := &Registry{filters: make(map[ID]Filter)}
	for id, f := range builtins() {
		reg.filters[id] = f
	}

	return reg
}

// Register adds f under id.
// Replacing a filter already registered is a configuration error.
func (reg *Registry) Register(id ID, f Filter) error {
	if id == "" || f == nil {
		return fmt.Errorf("%w: filter id and filter must be set", trailhead.ErrBadConfig)
	}

	if _, ok := reg.filters[id]; ok {
		return fmt.Errorf("%w: filter %q already registered", trailhead.ErrBadConfig, id)
	}

	reg.filters[id] = f
	return nil
}

// Lookup retrieves the Filter registered under id.
func (reg *Registry) Lookup(id ID) (Filter, bool) {
	f, ok := reg.filters[id]
	return f, ok
}

// Compile checks every Rule in rules against reg,
// returning a copy whose Options are normalized by each filter.
// Compile fails with an ErrBadConfig on the first field, in lexical order,
// naming an unknown filter or carrying options its filter rejects.
func (reg *Registry) Compile(rules Rules) (Rules, error) {
	compiled := make(Rules, len(rules))
	for _, name := range rules.Names() {
		rule := rules[name]
		f, ok := reg.Lookup(rule.Filter)
		if !ok {
			return nil, fmt.Errorf("%w: field %q: unknown filter %q", trailhead.ErrBadConfig, name, rule.Filter)
		}

		if rule.Flags&^(RequireSequence|ForceSequence) != 0 {
			return nil, fmt.Errorf("%w: field %q: unknown flags %d", trailhead.ErrBadConfig, name, rule.Flags)
		}

		if oc, ok := f.(OptionsCompiler); ok {
			opts, err := oc.CompileOptions(rule.Options)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %s", trailhead.ErrBadConfig, name, err)
			}
			rule.Options = opts
		}

		compiled[name] = rule
	}

	return compiled, nil
}

// Apply validates raw against rule.
//
// Without a sequence flag, a sequence or mapping raw value is Invalid.
// With RequireSequence, raw must be a sequence and every element must pass;
// nested sequences are validated recursively.
// ForceSequence first wraps a scalar raw value in a one-element sequence.
func (reg *Registry) Apply(rule Rule, raw any) Result {
	f, ok := reg.Lookup(rule.Filter)
	if !ok {
		return Invalid
	}

	if !rule.sequence() {
		if isComposite(raw) {
			return Invalid
		}

		v, ok := f.Apply(raw, rule.Options)
		if !ok {
			return Invalid
		}

		return Valid(v)
	}

	if rule.Flags.Has(ForceSequence) && !isComposite(raw) {
		raw = []any{raw}
	}

	seq, ok := asSequence(raw)
	if !ok {
		return Invalid
	}

	out, ok := applySequence(f, seq, rule.Options)
	if !ok {
		return Invalid
	}

	return Valid(out)
}

func applySequence(f Filter, seq []any, opts Options) ([]any, bool) {
	out := make([]any, len(seq))
	for i, el := range seq {
		if nested, ok := asSequence(el); ok {
			v, ok := applySequence(f, nested, opts)
			if !ok {
				return nil, false
			}
			out[i] = v
			continue
		}

		if isComposite(el) {
			return nil, false
		}

		v, ok := f.Apply(el, opts)
		if !ok {
			return nil, false
		}
		out[i] = v
	}

	return out, true
}

// asSequence converts the sequence shapes request sources produce into a []any.
func asSequence(v any) ([]any, bool) {
	switch seq := v.(type) {
	case []any:
		return seq, true
	case []string:
		out := make([]any, len(seq))
		for i, s := range seq {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func isComposite(v any) bool {
	switch v.(type) {
	case []any, []string, map[string]any:
		return true
	default:
		return false
	}
}

package req

import (
	"fmt"
	"maps"
	"sort"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/logger"
)

// field is one entry of the field store: the result of validating raw.
type field struct {
	result filter.Result
	raw    any
}

// applyMode selects how apply treats the existing field store.
type applyMode int

const (
	// replaceFields rebuilds the store from the given rules alone.
	replaceFields applyMode = iota

	// mergeFields layers the given rules over the existing rules and store.
	mergeFields
)

func (m applyMode) String() string {
	if m == mergeFields {
		return "merge"
	}

	return "replace"
}

// apply compiles rules, validates the merged sources against them,
// and swaps the new rules and field store in only once everything succeeded.
func (r *Request) apply(rules filter.Rules, mode applyMode) error {
	compiled, err := r.filters.Compile(rules)
	if err != nil {
		return fmt.Errorf("trailhead/http/req: failed compiling rules: %w", err)
	}

	merged := r.merged()

	var (
		nextRules  filter.Rules
		nextFields map[string]field
	)

	switch mode {
	case mergeFields:
		nextRules = r.rules.Clone()
		if nextRules == nil {
			nextRules = make(filter.Rules, len(compiled))
		}
		maps.Copy(nextRules, compiled)
		nextFields = maps.Clone(r.fields)
		if nextFields == nil {
			nextFields = make(map[string]field, len(compiled))
		}
	default:
		nextRules = compiled
		nextFields = make(map[string]field, len(compiled))
	}

	var revalidated []string
	for name, rule := range compiled {
		raw, ok := merged[name]
		if ok {
			nextFields[name] = field{result: r.filters.Apply(rule, raw), raw: raw}
			revalidated = append(revalidated, name)
			continue
		}

		if _, exists := nextFields[name]; exists && mode == mergeFields {
			continue
		}

		if r.addEmpty {
			nextFields[name] = field{result: filter.Absent}
		}
	}

	r.rules = nextRules
	r.fields = nextFields

	sort.Strings(revalidated)
	r.debug("fields validated", &logger.LogContext{
		Caller: logger.CurrentCaller(),
		Data:   map[string]any{"mode": mode.String(), "fields": revalidated},
	})

	return nil
}

// SetFilters replaces the rule set with rules and rebuilds the field store:
// afterward it holds exactly the fields rules declares.
//
// Values come from cookies, body, query and headers, in that precedence,
// falling back on what the store held before the call,
// so a field set ad hoc and redeclared stays validatable.
//
// A rule naming an unknown filter or carrying bad options fails SetFilters
// with an error wrapping [trailhead.ErrBadConfig], leaving the store as it was.
func (r *Request) SetFilters(rules filter.Rules) error {
	return r.apply(rules, replaceFields)
}

// AddFilters merges rules into the rule set, later definitions replacing earlier ones by name.
//
// Every field rules declares is revalidated from the same precedence mapping SetFilters uses.
// Other fields keep their results.
// An added field no source holds is stored as filter.Absent, unless the store already has it.
//
// AddFilters fails like SetFilters, leaving the store as it was.
func (r *Request) AddFilters(rules filter.Rules) error {
	return r.apply(rules, mergeFields)
}

// Set stores raw under name, validating it against the rule declared for name, if any.
func (r *Request) Set(name string, raw any) error {
	if name == "" {
		return fmt.Errorf("%w: field name is empty", trailhead.ErrMissingData)
	}

	raw = cloneValue(raw)
	result := filter.Valid(raw)
	if rule, ok := r.rules[name]; ok {
		result = r.filters.Apply(rule, raw)
	}

	r.fields[name] = field{result: result, raw: raw}
	return nil
}

// Unset removes name from the field store. Its rule, if any, remains declared.
func (r *Request) Unset(name string) {
	delete(r.fields, name)
}

// Field returns the result stored under name; a name the store lacks is filter.Absent.
func (r *Request) Field(name string) filter.Result {
	return r.fields[name].result
}

// Has reports whether the field store holds name, in any state.
func (r *Request) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Value returns the validated value stored under name, or nil unless the field is valid.
func (r *Request) Value(name string) any {
	return r.fields[name].result.Value()
}

// Fields returns a copy of the field store.
func (r *Request) Fields() map[string]filter.Result {
	out := make(map[string]filter.Result, len(r.fields))
	for name, f := range r.fields {
		out[name] = f.result
	}

	return out
}

// Rules returns a copy of the current rule set.
func (r *Request) Rules() filter.Rules {
	return r.rules.Clone()
}

// Invalid lists, sorted, the fields that failed validation.
func (r *Request) Invalid() []string {
	var names []string
	for name, f := range r.fields {
		if f.result.IsInvalid() {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}

// Errors summarizes the invalid fields as ValidationErrors, or returns nil if there are none.
func (r *Request) Errors() error {
	names := r.Invalid()
	if len(names) == 0 {
		return nil
	}

	errs := make(ValidationErrors, 0, len(names))
	for _, name := range names {
		errs = append(errs, ValidationError{
			Field: name,
			Got:   r.fields[name].raw,
			Rule:  r.rules[name].String(),
		})
	}

	return errs
}

// FieldAs returns the validated value stored under name as a T.
// It reports false when the field is not valid or holds another type.
func FieldAs[T any](r *Request, name string) (T, bool) {
	var zero T
	f := r.Field(name)
	if !f.OK() {
		return zero, false
	}

	v, ok := f.Value().(T)
	if !ok {
		return zero, false
	}

	return v, true
}

package filter

import (
	"encoding/json"
	"fmt"

	"github.com/xy-planning-network/trailhead"
)

var _ trailhead.Enumerable = State(0)

// A State is the outcome of applying a Rule to a value.
type State int

const (
	StateAbsent State = iota
	StateValid
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

func (s State) Valid() error {
	switch s {
	case StateAbsent, StateValid, StateInvalid:
		return nil
	default:
		return fmt.Errorf("%w: state %d", trailhead.ErrNotValid, s)
	}
}

// A Result is a tagged value: Valid(v), Invalid or Absent.
// The zero value is Absent.
type Result struct {
	state State
	value any
}

var (
	// Invalid marks a value that failed validation.
	Invalid = Result{state: StateInvalid}

	// Absent marks a declared field for which no source held a value.
	Absent = Result{state: StateAbsent}
)

// Valid constructs a Result holding the validated value v.
// v may be nil: a valid null is distinct from Absent.
func Valid(v any) Result { return Result{state: StateValid, value: v} }

func (r Result) State() State    { return r.state }
func (r Result) OK() bool        { return r.state == StateValid }
func (r Result) IsInvalid() bool { return r.state == StateInvalid }
func (r Result) IsAbsent() bool  { return r.state == StateAbsent }

// Value returns the validated value, or nil if r is not valid.
func (r Result) Value() any {
	if r.state != StateValid {
		return nil
	}

	return r.value
}

func (r Result) String() string {
	if r.state == StateValid {
		return fmt.Sprintf("valid(%v)", r.value)
	}

	return r.state.String()
}

// MarshalJSON renders a valid Result as its value, an invalid one as false
// and an absent one as null.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.state {
	case StateValid:
		return json.Marshal(r.value)
	case StateInvalid:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	v10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// tagged backs the filters that defer to a go-playground/validator tag.
var tagged = v10.New()

func builtins() map[ID]Filter {
	return map[ID]Filter{
		Bool:    Func(validateBool),
		Default: Func(passthrough),
		Email:   validatorTag("email"),
		Float:   numberFilter{float: true},
		IP:      validatorTag("ip"),
		Int:     numberFilter{},
		Regexp:  regexpFilter{},
		String:  Func(sanitizeString),
		Trim:    Func(trim),
		URL:     validatorTag("url"),
		UUID:    Func(validateUUID),
	}
}

// passthrough accepts any scalar unchanged, including nil.
func passthrough(raw any, _ Options) (any, bool) { return raw, true }

// validateBool accepts booleans and their common textual and numeric spellings.
func validateBool(raw any, _ Options) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes":
			return true, true
		case "0", "false", "off", "no", "":
			return false, true
		}
	}

	if n, ok := toInt64(raw); ok && (n == 0 || n == 1) {
		return n == 1, true
	}

	return nil, false
}

// numberFilter validates integers, or floats when float is set,
// against optional "min" and "max" bounds.
type numberFilter struct {
	float bool
}

func (nf numberFilter) CompileOptions(opts Options) (Options, error) {
	out := make(Options, len(opts))
	for key, val := range opts {
		switch key {
		case "min", "max":
			f, ok := toFloat64(val)
			if !ok {
				return nil, fmt.Errorf("option %q must be a number, got %v", key, val)
			}
			out[key] = f
		default:
			return nil, fmt.Errorf("unknown option %q", key)
		}
	}

	if min, ok := out["min"].(float64); ok {
		if max, ok := out["max"].(float64); ok && min > max {
			return nil, fmt.Errorf("option min %v exceeds max %v", min, max)
		}
	}

	return out, nil
}

func (nf numberFilter) Apply(raw any, opts Options) (any, bool) {
	var out any
	var f float64
	if nf.float {
		v, ok := toFloat64(raw)
		if !ok {
			return nil, false
		}
		out, f = v, v
	} else {
		v, ok := toInt64(raw)
		if !ok || v < math.MinInt || v > math.MaxInt {
			return nil, false
		}
		out, f = int(v), float64(v)
	}

	if min, ok := opts["min"].(float64); ok && f < min {
		return nil, false
	}

	if max, ok := opts["max"].(float64); ok && f > max {
		return nil, false
	}

	return out, true
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	case float32:
		return toInt64(float64(v))
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return toInt64(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func toFloat64(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		return toFloat64(string(v))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		n, ok := toInt64(raw)
		if !ok {
			return 0, false
		}
		f = float64(n)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// stringify renders a scalar as text; nil renders as the empty string.
func stringify(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case json.Number:
		return string(v), true
	}

	if n, ok := toInt64(raw); ok {
		return strconv.FormatInt(n, 10), true
	}

	return "", false
}

// sanitizeString stringifies a scalar and strips anything that looks like an HTML tag.
func sanitizeString(raw any, _ Options) (any, bool) {
	s, ok := stringify(raw)
	if !ok {
		return nil, false
	}

	return stripTags(s), true
}

func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func trim(raw any, _ Options) (any, bool) {
	s, ok := stringify(raw)
	if !ok {
		return nil, false
	}

	return strings.TrimSpace(s), true
}

// validatorTag builds a Filter accepting strings satisfying a go-playground/validator tag.
func validatorTag(tag string) Filter {
	return Func(func(raw any, _ Options) (any, bool) {
		s, ok := raw.(string)
		if !ok {
			return nil, false
		}

		s = strings.TrimSpace(s)
		if err := tagged.Var(s, "required,"+tag); err != nil {
			return nil, false
		}

		return s, true
	})
}

// validateUUID accepts any UUID encoding uuid.Parse understands, returning the canonical form.
func validateUUID(raw any, _ Options) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}

	return id.String(), true
}

// regexpFilter accepts scalars whose text matches the "pattern" option.
type regexpFilter struct{}

func (regexpFilter) CompileOptions(opts Options) (Options, error) {
	var re *regexp.Regexp
	switch p := opts["pattern"].(type) {
	case string:
		compiled, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("option pattern: %s", err)
		}
		re = compiled
	case *regexp.Regexp:
		re = p
	default:
		return nil, fmt.Errorf("option pattern is required")
	}

	return Options{"pattern": re}, nil
}

func (regexpFilter) Apply(raw any, opts Options) (any, bool) {
	re, ok := opts["pattern"].(*regexp.Regexp)
	if !ok {
		return nil, false
	}

	s, ok := stringify(raw)
	if !ok || !re.MatchString(s) {
		return nil, false
	}

	return s, true
}

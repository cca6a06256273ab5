package req

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/trailhead"
)

var (
	binder    = newBinder()
	validated = newValidator()
)

func newBinder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return dec
}

// Bind decodes the valid fields of r into dst, a pointer to a struct,
// matching fields by their "schema" struct tags,
// then checks dst against its "validate" struct tags.
//
// Nested mappings bind to nested structs through dotted keys ("address.city"),
// sequences to slices.
// Invalid and absent fields are never bound; pair Bind with "required" rules to reject them.
func (r *Request) Bind(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: cannot bind into %T, need a pointer to a struct", trailhead.ErrBadAny, dst)
	}

	vals := make(url.Values)
	for name, f := range r.fields {
		if f.result.OK() {
			flatten(vals, name, f.result.Value())
		}
	}

	if err := binder.Decode(dst, vals); err != nil {
		return translateDecoderError(err)
	}

	return validated.validate(dst)
}

// flatten writes v into vals under key in the shape gorilla/schema reads.
func flatten(vals url.Values, key string, v any) {
	switch v := v.(type) {
	case nil:
		return
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			flatten(vals, key+"."+k, v[k])
		}
	case []any:
		for i, el := range v {
			if m, ok := el.(map[string]any); ok {
				flatten(vals, key+"."+strconv.Itoa(i), m)
				continue
			}
			flatten(vals, key, el)
		}
	case []string:
		vals[key] = append(vals[key], v...)
	case string:
		vals.Add(key, v)
	case float64:
		vals.Add(key, strconv.FormatFloat(v, 'f', -1, 64))
	default:
		vals.Add(key, fmt.Sprint(v))
	}
}

// translateDecoderError converts an error returned by *schema.Decoder into standardized errors.
// Some *schema.Decoder errors are issues with calling code;
// some errors are unexpected issues;
// still some are mismatches between a request's fields and the destination's shape.
func translateDecoderError(err error) error {
	var pkgErrs schema.MultiError
	if !errors.As(err, &pkgErrs) {
		return fmt.Errorf("%w: %s", trailhead.ErrBadFormat, err)
	}

	keys := make([]string, 0, len(pkgErrs))
	for key := range pkgErrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var validErrs ValidationErrors
	for _, key := range keys {
		switch err := pkgErrs[key].(type) {
		case schema.ConversionError:
			// For non-slice values, Index is -1.
			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				Got:   fmt.Sprintf("bad value at index %d", max(0, err.Index)),
				Rule:  "must be " + err.Type.String(),
			})

		case schema.EmptyFieldError:
			return fmt.Errorf(`%w: use validate tags to set "required" fields, not schema`, trailhead.ErrNotImplemented)

		case schema.UnknownKeyError:
			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				Got:   "value is set",
				Rule:  "unexpected key should not be set",
			})

		default:
			// A field whose type lacks a schema.Converter only fails once a value arrives for it.
			if strings.Contains(err.Error(), "schema: converter not found for") {
				return fmt.Errorf("%w: cannot convert values into unsupported type", trailhead.ErrNotImplemented)
			}

			return fmt.Errorf("%w: %s", trailhead.ErrUnexpected, err)
		}
	}

	return validErrs
}

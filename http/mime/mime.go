// Package mime decodes request bodies into parameter mappings, keyed by media type.
//
// A [Registry] holds one [Decoder] per normalized media type.
// [NewRegistry] registers application/json and application/x-www-form-urlencoded;
// other types are added with [*Registry.Register] without touching the request model.
package mime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/form"
)

const (
	ApplicationJSON           = "application/json"
	ApplicationFormURLEncoded = "application/x-www-form-urlencoded"
	MultipartFormData         = "multipart/form-data"
)

// A Decoder converts a raw body into a mapping of parameter names to values.
type Decoder interface {
	Decode(body []byte) (map[string]any, error)
}

// DecoderFunc adapts an ordinary function into a Decoder.
type DecoderFunc func(body []byte) (map[string]any, error)

// Decode calls f(body).
func (f DecoderFunc) Decode(body []byte) (map[string]any, error) { return f(body) }

// An UnsupportedMediaTypeError reports a body whose media type has no registered Decoder.
type UnsupportedMediaTypeError struct {
	MediaType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("%s: %q", trailhead.ErrUnsupportedMediaType, e.MediaType)
}

func (*UnsupportedMediaTypeError) Unwrap() error { return trailhead.ErrUnsupportedMediaType }

// MediaType extracts the normalized media type from a Content-Type header value:
// the text before the first ";", trimmed and lower-cased.
func MediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// A Registry maps media types to Decoders.
//
// A Registry is meant to be populated at process start;
// once populated, it is safe for concurrent use by readers.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry constructs a Registry decoding JSON and URL-encoded form bodies.
func NewRegistry() *Registry {
	return &Registry{decoders: map[string]Decoder{
		ApplicationJSON:           DecoderFunc(DecodeJSON),
		ApplicationFormURLEncoded: DecoderFunc(DecodeForm),
	}}
}

// Register adds or replaces the Decoder for mediaType.
// mediaType may be a full Content-Type value; only its media type is used.
func (reg *Registry) Register(mediaType string, dec Decoder) error {
	mt := MediaType(mediaType)
	if mt == "" || dec == nil {
		return fmt.Errorf("%w: media type and decoder must be set", trailhead.ErrBadConfig)
	}

	reg.decoders[mt] = dec
	return nil
}

// Lookup retrieves the Decoder for mediaType.
func (reg *Registry) Lookup(mediaType string) (Decoder, bool) {
	dec, ok := reg.decoders[MediaType(mediaType)]
	return dec, ok
}

// Decode decodes body with the Decoder registered for mediaType.
// If none is registered, Decode returns an *UnsupportedMediaTypeError.
func (reg *Registry) Decode(mediaType string, body []byte) (map[string]any, error) {
	dec, ok := reg.Lookup(mediaType)
	if !ok {
		return nil, &UnsupportedMediaTypeError{MediaType: MediaType(mediaType)}
	}

	return dec.Decode(body)
}

// DecodeJSON decodes a JSON object into a mapping.
// Valid JSON whose top level is not an object yields an empty mapping.
// Numbers decode as json.Number, exactly as written.
func DecodeJSON(body []byte) (map[string]any, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", trailhead.ErrBadFormat)
	}

	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return map[string]any{}, nil
	}

	m, ok := jsonValue(res).(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}

	return m, nil
}

// jsonValue converts res like gjson.Result.Value,
// except numbers stay json.Number so integers past 2^53 keep every digit.
func jsonValue(res gjson.Result) any {
	switch {
	case res.IsObject():
		m := make(map[string]any)
		res.ForEach(func(key, val gjson.Result) bool {
			m[key.String()] = jsonValue(val)
			return true
		})
		return m
	case res.IsArray():
		arr := res.Array()
		seq := make([]any, len(arr))
		for i, el := range arr {
			seq[i] = jsonValue(el)
		}
		return seq
	case res.Type == gjson.Number:
		return json.Number(res.Raw)
	default:
		return res.Value()
	}
}

// DecodeForm decodes an application/x-www-form-urlencoded body
// with the same bracketed-key rules as query strings.
func DecodeForm(body []byte) (map[string]any, error) {
	return form.ParseQuery(string(body)), nil
}

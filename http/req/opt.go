package req

import (
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/mime"
	"github.com/xy-planning-network/trailhead/logger"
)

const (
	// DefaultMaxBodyBytes bounds the body FromHTTP reads.
	DefaultMaxBodyBytes int64 = 10 << 20

	// DefaultMaxMemory bounds the multipart parts FromHTTP holds in memory.
	DefaultMaxMemory int64 = 32 << 20
)

// An Option configures a Request built by New or FromHTTP.
type Option func(*options)

type options struct {
	query    Params
	body     Params
	cookies  Params
	uploads  Uploads
	rawBody  []byte
	rules    filter.Rules
	decoders *mime.Registry
	filters  *filter.Registry
	addEmpty bool
	log      logger.Logger

	maxBodyBytes int64
	maxMemory    int64
}

func newOptions(opts ...Option) *options {
	o := &options{
		decoders:     defaultDecoders,
		filters:      defaultFilters,
		addEmpty:     true,
		maxBodyBytes: DefaultMaxBodyBytes,
		maxMemory:    DefaultMaxMemory,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithQuery supplies pre-parsed query parameters,
// which New then uses instead of parsing the query string.
func WithQuery(p Params) Option {
	return func(o *options) { o.query = p }
}

// WithBody supplies pre-parsed body parameters.
// A non-empty body group is never replaced by decoding the raw body.
func WithBody(p Params) Option {
	return func(o *options) { o.body = p }
}

// WithCookies supplies the request's cookies.
func WithCookies(p Params) Option {
	return func(o *options) { o.cookies = p }
}

// WithUploads supplies the request's upload descriptors.
func WithUploads(u Uploads) Option {
	return func(o *options) { o.uploads = u }
}

// WithRawBody supplies the unparsed request body.
// A non-nil, zero-length body still triggers decoding.
func WithRawBody(b []byte) Option {
	return func(o *options) { o.rawBody = b }
}

// WithRules declares the rules applied when the Request is built.
func WithRules(rules filter.Rules) Option {
	return func(o *options) { o.rules = rules }
}

// WithDecoders replaces the default body decoders.
func WithDecoders(reg *mime.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.decoders = reg
		}
	}
}

// WithFilters replaces the default filter registry.
func WithFilters(reg *filter.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.filters = reg
		}
	}
}

// WithAddEmpty sets whether declared fields no source holds are stored as filter.Absent.
// It defaults to true; when false, such fields are left out of the store.
func WithAddEmpty(addEmpty bool) Option {
	return func(o *options) { o.addEmpty = addEmpty }
}

// WithLogger sets the logger the Request reports decoding and revalidation through.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMaxBodyBytes bounds the body FromHTTP reads; larger bodies fail with trailhead.ErrTooLarge.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithMaxMemory bounds the multipart parts FromHTTP holds in memory before spilling to disk.
func WithMaxMemory(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxMemory = n
		}
	}
}

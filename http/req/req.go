package req

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/form"
	"github.com/xy-planning-network/trailhead/http/mime"
	"github.com/xy-planning-network/trailhead/logger"
)

// Server keys New reads request metadata from.
const (
	KeyContentLength = "CONTENT_LENGTH"
	KeyContentType   = "CONTENT_TYPE"
	KeyHTTPS         = "HTTPS"
	KeyHost          = "HTTP_HOST"
	KeyQueryString   = "QUERY_STRING"
	KeyRequestMethod = "REQUEST_METHOD"
	KeyRequestScheme = "REQUEST_SCHEME"
	KeyRequestURI    = "REQUEST_URI"
	KeyServerPort    = "SERVER_PORT"

	// HeaderPrefix marks a server key carrying an HTTP header, e.g. HTTP_CACHE_CONTROL.
	HeaderPrefix = "HTTP_"
)

var (
	defaultDecoders = mime.NewRegistry()
	defaultFilters  = filter.NewRegistry()
)

// Server is a snapshot of a web server's request environment, in the CGI convention.
type Server map[string]string

// Params is one group of request parameters.
// Values are strings, []any and map[string]any for bracketed or JSON structures,
// JSON scalars (json.Number, bool) or nil.
type Params map[string]any

// A Request is an HTTP request normalized into metadata, raw parameter groups
// and a store of fields validated against declared rules.
//
// Metadata and raw groups are fixed by New, which deep-copies the groups it is given;
// getters hand out deep copies too.
// The field store changes only through SetFilters, AddFilters, Set and Unset.
//
// A Request belongs to the single logical request that built it.
// Those four methods mutate the field store without locking;
// callers sharing a Request across goroutines must serialize them.
type Request struct {
	method string
	scheme string
	host   string
	port   int
	path   string
	query  string

	server      Server
	queryParams Params
	body        Params
	cookies     Params
	headers     map[string]string
	uploads     Uploads

	rules    filter.Rules
	fields   map[string]field
	addEmpty bool

	filters *filter.Registry
	log     logger.Logger
}

// New builds a Request from the server environment and the groups supplied through opts.
//
// When the body group is empty, a content-type header is set and a raw body was supplied,
// New decodes the raw body with the Decoder registered for its media type, whatever the method.
// A media type without a Decoder fails New with an error wrapping [trailhead.ErrUnsupportedMediaType].
// A Decoder error leaves the body group empty.
//
// Rules supplied with WithRules are compiled and applied before New returns;
// a rule naming an unknown filter fails New with an error wrapping [trailhead.ErrBadConfig].
func New(server Server, opts ...Option) (*Request, error) {
	o := newOptions(opts...)
	r := &Request{
		server:   maps.Clone(server),
		cookies:  cloneParams(o.cookies),
		uploads:  cloneUploads(o.uploads),
		fields:   make(map[string]field),
		rules:    make(filter.Rules),
		addEmpty: o.addEmpty,
		filters:  o.filters,
		log:      o.log,
	}

	if r.server == nil {
		r.server = make(Server)
	}

	r.deriveMetadata()

	r.queryParams = cloneParams(o.query)
	if r.queryParams == nil {
		r.queryParams = form.ParseQuery(r.query)
	}

	r.body = cloneParams(o.body)
	if r.body == nil {
		r.body = make(Params)
	}

	if r.cookies == nil {
		r.cookies = make(Params)
	}

	if r.uploads == nil {
		r.uploads = make(Uploads)
	}

	r.headers = normalizeHeaders(r.server)

	if err := r.decodeBody(o.decoders, o.rawBody); err != nil {
		return nil, err
	}

	for name, u := range r.uploads {
		if err := u.Validate(); err != nil {
			r.warn("malformed upload", &logger.LogContext{
				Caller: logger.CurrentCaller(),
				Data:   map[string]any{"field": name},
				Error:  err,
			})
		}
	}

	if o.rules != nil {
		if err := r.apply(o.rules, replaceFields); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// deriveMetadata sets method, scheme, host, port, path and query from the server environment.
func (r *Request) deriveMetadata() {
	r.method = strings.ToUpper(r.server[KeyRequestMethod])

	if scheme, ok := r.server[KeyRequestScheme]; ok {
		r.scheme = strings.ToLower(scheme)
	} else if https, ok := r.server[KeyHTTPS]; ok && !strings.EqualFold(https, "off") {
		r.scheme = "https"
	}

	if hostport, ok := r.server[KeyHost]; ok {
		var port string
		r.host, port = splitHostPort(hostport)
		r.port = parsePort(port)
	}

	if r.port == 0 {
		if port, ok := r.server[KeyServerPort]; ok {
			r.port = parsePort(port)
		} else if r.scheme == "https" {
			r.port = 443
		} else if r.host != "" {
			r.port = 80
		}
	}

	if uri, ok := r.server[KeyRequestURI]; ok {
		r.path, r.query, _ = strings.Cut(uri, "?")
	}

	if qs, ok := r.server[KeyQueryString]; ok {
		r.query = qs
	}
}

// splitHostPort splits a Host header on its first colon,
// keeping a bracketed IPv6 literal such as "[::1]:8080" whole.
// The host is lower-cased.
func splitHostPort(hostport string) (host, port string) {
	if strings.HasPrefix(hostport, "[") {
		if end := strings.IndexByte(hostport, ']'); end > 0 {
			host, port = hostport[:end+1], strings.TrimPrefix(hostport[end+1:], ":")
			return strings.ToLower(host), port
		}
	}

	host, port, _ = strings.Cut(hostport, ":")
	return strings.ToLower(host), port
}

// parsePort converts s into a port, or 0 when s is not a valid one.
func parsePort(s string) int {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 0 || port > 65535 {
		return 0
	}

	return port
}

// normalizeHeaders projects every HTTP_ server key into a header named in lower case with hyphens.
// The CGI CONTENT_TYPE and CONTENT_LENGTH keys fill their headers when no HTTP_ key did.
func normalizeHeaders(server Server) map[string]string {
	headers := make(map[string]string)
	for key, val := range server {
		if !strings.HasPrefix(key, HeaderPrefix) {
			continue
		}

		if name := headerName(key[len(HeaderPrefix):]); name != "" {
			headers[name] = val
		}
	}

	for _, key := range []string{KeyContentType, KeyContentLength} {
		name := headerName(key)
		if _, ok := headers[name]; ok {
			continue
		}

		if val, ok := server[key]; ok {
			headers[name] = val
		}
	}

	return headers
}

func headerName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "-"))
}

// decodeBody fills an empty body group by decoding rawBody per the content-type header.
func (r *Request) decodeBody(decoders *mime.Registry, rawBody []byte) error {
	if len(r.body) > 0 || rawBody == nil {
		return nil
	}

	ct := r.headers["content-type"]
	if ct == "" {
		return nil
	}

	mt := mime.MediaType(ct)
	decoded, err := decoders.Decode(mt, rawBody)

	var unsupported *mime.UnsupportedMediaTypeError
	if errors.As(err, &unsupported) {
		return fmt.Errorf("trailhead/http/req: failed decoding %s body: %w", r.method, err)
	}

	if err != nil {
		r.debug("body not decoded", &logger.LogContext{
			Caller: logger.CurrentCaller(),
			Data:   map[string]any{"mediaType": mt},
			Error:  err,
		})
		decoded = nil
	}

	if decoded == nil {
		decoded = make(Params)
	}

	r.body = decoded
	return nil
}

// Method returns the upper-cased request method, or "".
func (r *Request) Method() string { return r.method }

// Scheme returns "http", "https", another explicitly set scheme, or "".
func (r *Request) Scheme() string { return r.scheme }

// Host returns the lower-cased host, or "" if unknown.
func (r *Request) Host() string { return r.host }

// Port returns the request port, or 0 if unknown.
func (r *Request) Port() int { return r.port }

// Path returns the path of the request target.
func (r *Request) Path() string { return r.path }

// Query returns the raw query string.
func (r *Request) Query() string { return r.query }

// MediaType returns the normalized media type of the content-type header, or "".
func (r *Request) MediaType() string { return mime.MediaType(r.headers["content-type"]) }

// Server returns a copy of the server environment.
func (r *Request) Server() Server { return maps.Clone(r.server) }

// QueryParams returns a deep copy of the query parameter group.
func (r *Request) QueryParams() Params { return cloneParams(r.queryParams) }

// BodyParams returns a deep copy of the body parameter group.
func (r *Request) BodyParams() Params { return cloneParams(r.body) }

// Cookies returns a deep copy of the cookie group.
func (r *Request) Cookies() Params { return cloneParams(r.cookies) }

// Headers returns a copy of the normalized headers.
func (r *Request) Headers() map[string]string { return maps.Clone(r.headers) }

// Header retrieves one header, accepting any casing and either "-" or "_" as separator.
func (r *Request) Header(name string) string { return r.headers[headerName(name)] }

// Uploads returns a deep copy of the upload descriptors.
func (r *Request) Uploads() Uploads { return cloneUploads(r.uploads) }

func (r *Request) debug(msg string, ctx *logger.LogContext) {
	if r.log != nil {
		r.log.Debug(msg, ctx)
	}
}

func (r *Request) warn(msg string, ctx *logger.LogContext) {
	if r.log != nil {
		r.log.Warn(msg, ctx)
	}
}

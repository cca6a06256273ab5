package req

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/form"
	"github.com/xy-planning-network/trailhead/http/mime"
)

// FromHTTP builds a Request from r, the way a CGI web server would describe it.
//
// The body is read up to the configured limit and restored on r.
// A larger body fails FromHTTP with an error wrapping [trailhead.ErrTooLarge].
// A multipart/form-data body becomes the body group plus uploads;
// any other body is handed to New for decoding.
// Uploaded files stay in r.MultipartForm: their File.TmpName is empty,
// so their JSON carries no tmp_name.
//
// Options in opts apply after, and so override, the groups FromHTTP derives.
func FromHTTP(r *http.Request, opts ...Option) (*Request, error) {
	o := newOptions(opts...)

	derived := []Option{WithCookies(cookies(r))}

	if mime.MediaType(r.Header.Get("Content-Type")) == mime.MultipartFormData {
		body, uploads, err := readMultipart(r, o.maxBodyBytes, o.maxMemory)
		if err != nil {
			return nil, err
		}
		derived = append(derived, WithBody(body), WithUploads(uploads))
	} else {
		raw, err := readBody(r, o.maxBodyBytes)
		if err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			derived = append(derived, WithRawBody(raw))
		}
	}

	return New(serverFromHTTP(r), append(derived, opts...)...)
}

// serverFromHTTP describes r in CGI server keys.
func serverFromHTTP(r *http.Request) Server {
	server := Server{
		KeyRequestMethod: r.Method,
		KeyHost:          r.Host,
		KeyRequestURI:    r.URL.RequestURI(),
		KeyQueryString:   r.URL.RawQuery,
		"SERVER_PROTOCOL": r.Proto,
		"REMOTE_ADDR":     r.RemoteAddr,
	}

	switch {
	case r.URL.Scheme != "":
		server[KeyRequestScheme] = r.URL.Scheme
	case r.TLS != nil:
		server[KeyHTTPS] = "on"
	default:
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			server[KeyRequestScheme] = proto
		}
	}

	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if _, port, err := net.SplitHostPort(addr.String()); err == nil {
			server[KeyServerPort] = port
		}
	}

	for name, vals := range r.Header {
		key := HeaderPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		server[key] = strings.Join(vals, ", ")
	}

	if r.ContentLength > 0 {
		server[KeyContentLength] = strconv.FormatInt(r.ContentLength, 10)
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		server[KeyContentType] = ct
	}

	return server
}

// cookies collects r's cookies; the first cookie of a name wins.
func cookies(r *http.Request) Params {
	p := make(Params)
	for _, c := range r.Cookies() {
		if _, ok := p[c.Name]; !ok {
			p[c.Name] = c.Value
		}
	}

	return p
}

// readBody reads at most limit bytes of r's body, then restores it so later handlers can read it again.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	b, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("trailhead/http/req: failed reading body: %w", err)
	}

	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", trailhead.ErrTooLarge, limit)
	}

	r.Body = io.NopCloser(bytes.NewReader(b))
	return b, nil
}

// readMultipart parses r's multipart form into a body group and uploads.
// A field carrying more than one file gets the multi-file shape.
func readMultipart(r *http.Request, limit, maxMemory int64) (Params, Uploads, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, limit)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, nil, fmt.Errorf("%w: %s", trailhead.ErrTooLarge, err)
		}
		return nil, nil, fmt.Errorf("%w: failed parsing multipart form: %s", trailhead.ErrBadFormat, err)
	}

	body := form.FromValues(r.MultipartForm.Value)

	uploads := make(Uploads, len(r.MultipartForm.File))
	for name, headers := range r.MultipartForm.File {
		files := make([]File, 0, len(headers))
		for _, fh := range headers {
			files = append(files, File{
				Name: fh.Filename,
				Type: fh.Header.Get("Content-Type"),
				Size: fh.Size,
			})
		}

		if len(files) == 1 {
			uploads[name] = SingleUpload(files[0])
			continue
		}
		uploads[name] = MultiUpload(files...)
	}

	return body, uploads, nil
}

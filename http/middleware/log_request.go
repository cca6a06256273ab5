package middleware

import (
	"net/http"
	"time"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/logger"
)

// A LogRequestRecord is what LogRequest reports about one request.
type LogRequestRecord struct {
	BodySize       int    `json:"bodySize"`
	Duration       int64  `json:"durationMs"`
	Host           string `json:"host"`
	ID             string `json:"id,omitempty"`
	IPAddr         string `json:"ipAddr,omitempty"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	Protocol       string `json:"protocol"`
	Referrer       string `json:"referrer,omitempty"`
	ReqContentType string `json:"reqContentType,omitempty"`
	Scheme         string `json:"scheme,omitempty"`
	Status         int    `json:"status"`
	URI            string `json:"uri"`
	UserAgent      string `json:"userAgent,omitempty"`
}

// LogRequest logs each request's method, URI, originating IP address, status and size
// at info level once the handler returns.
//
// LogRequest scrubs query values whose keys look like credentials, e.g. password or token.
//
// If ls is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := newStatusRecorder(w)
			h.ServeHTTP(sr, r)

			rec := newLogRequestRecord(r)
			rec.Status = sr.Status()
			rec.BodySize = sr.size
			rec.Duration = time.Since(start).Milliseconds()

			ls.Info(rec.Method+" "+rec.URI, &logger.LogContext{
				Caller: logger.CurrentCaller(),
				Data:   map[string]any{"request": rec},
			})
		})
	}
}

func newLogRequestRecord(r *http.Request) LogRequestRecord {
	uri := r.URL.Path
	q := r.URL.Query()
	trailhead.MaskAll(q)
	if query := q.Encode(); query != "" {
		uri += "?" + query
	}

	id, _ := r.Context().Value(trailhead.RequestIDKey).(string)

	return LogRequestRecord{
		Host:           r.Host,
		ID:             id,
		IPAddr:         IPAddress(r.Context()),
		Method:         r.Method,
		Path:           r.URL.Path,
		Protocol:       r.Proto,
		Referrer:       r.Referer(),
		ReqContentType: r.Header.Get("Content-Type"),
		Scheme:         r.URL.Scheme,
		URI:            uri,
		UserAgent:      r.UserAgent(),
	}
}

package req

import "github.com/xy-planning-network/trailhead/filter"

// A Snapshot is a JSON-serializable view of a Request.
type Snapshot struct {
	Method    string                   `json:"method"`
	Scheme    string                   `json:"scheme"`
	Host      string                   `json:"host"`
	Port      int                      `json:"port"`
	Path      string                   `json:"path"`
	Query     string                   `json:"query"`
	MediaType string                   `json:"mediaType,omitempty"`
	Headers   map[string]string        `json:"headers"`
	QueryArgs Params                   `json:"queryParams"`
	Body      Params                   `json:"bodyParams"`
	Cookies   Params                   `json:"cookies"`
	Uploads   Uploads                  `json:"uploads,omitempty"`
	Rules     map[string]string        `json:"rules,omitempty"`
	Fields    map[string]filter.Result `json:"fields"`
	Invalid   []string                 `json:"invalid,omitempty"`
}

// Snapshot captures r's metadata, raw groups and field store.
func (r *Request) Snapshot() Snapshot {
	s := Snapshot{
		Method:    r.method,
		Scheme:    r.scheme,
		Host:      r.host,
		Port:      r.port,
		Path:      r.path,
		Query:     r.query,
		MediaType: r.MediaType(),
		Headers:   r.Headers(),
		QueryArgs: r.QueryParams(),
		Body:      r.BodyParams(),
		Cookies:   r.Cookies(),
		Uploads:   r.Uploads(),
		Fields:    r.Fields(),
		Invalid:   r.Invalid(),
	}

	if len(r.rules) > 0 {
		s.Rules = make(map[string]string, len(r.rules))
		for name, rule := range r.rules {
			s.Rules[name] = rule.String()
		}
	}

	return s
}

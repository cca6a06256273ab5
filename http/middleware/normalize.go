package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/logger"
)

// Normalize builds a *req.Request from every request with req.FromHTTP
// and stores it in the request context under trailhead.NormalizedRequestKey.
//
// Requests that cannot be normalized are answered without reaching the handler:
// 415 for a body no decoder handles, 413 for a body over the limit, 400 otherwise.
//
// rules seed every normalized request; handlers may add their own with AddFilters.
// opts override the defaults FromHTTP applies, including rules.
// m may be nil.
func Normalize(ls logger.Logger, m *Metrics, rules filter.Rules, opts ...req.Option) Adapter {
	opts = append([]req.Option{req.WithLogger(ls), req.WithRules(rules)}, opts...)

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nr, err := req.FromHTTP(r, opts...)
			if err != nil {
				status := normalizeStatus(err)
				m.observeNormalize(outcome(status), nil)
				if ls != nil {
					ls.Warn("request not normalized", &logger.LogContext{
						Caller:  logger.CurrentCaller(),
						Error:   err,
						Request: r,
					})
				}

				http.Error(w, http.StatusText(status), status)
				return
			}

			m.observeNormalize(outcome(http.StatusOK), nr.Invalid())
			ctx := context.WithValue(r.Context(), trailhead.NormalizedRequestKey, nr)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NormalizedRequest retrieves the *req.Request Normalize stored in ctx.
func NormalizedRequest(ctx context.Context) (*req.Request, bool) {
	nr, ok := ctx.Value(trailhead.NormalizedRequestKey).(*req.Request)
	return nr, ok && nr != nil
}

func normalizeStatus(err error) int {
	switch {
	case errors.Is(err, trailhead.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, trailhead.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, trailhead.ErrBadConfig):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func outcome(status int) string {
	switch status {
	case http.StatusOK:
		return "ok"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusInternalServerError:
		return "bad_config"
	default:
		return "bad_request"
	}
}

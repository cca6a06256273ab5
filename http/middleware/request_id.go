package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/trailhead"
)

// RequestIDHeader carries a request's ID in and out.
const RequestIDHeader = "X-Request-Id"

// RequestID stores an ID for the request in its context under trailhead.RequestIDKey
// and echoes it in the response's X-Request-Id header.
// An incoming X-Request-Id that parses as a UUID is kept; otherwise a new UUID is minted.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), trailhead.RequestIDKey, id)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

package resp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/logger"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(Responder, *Response) error

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w    http.ResponseWriter
	r    *http.Request
	code int
	data any
	errs []req.ValidationError
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// Data stores the provided value for writing to the client.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			d.logger.Error(e.Error(), &logger.LogContext{
				Caller:  logger.CurrentCaller(),
				Error:   e,
				Request: r.r,
			})
		}

		return Code(http.StatusInternalServerError)(d, r)
	}
}

// Validated reports nr's invalid fields under "errors"
// and sets the status code http.StatusUnprocessableEntity when there are any.
func Validated(nr *req.Request) Fn {
	return func(d Responder, r *Response) error {
		if nr == nil {
			return fmt.Errorf("%w: no request to report on", trailhead.ErrMissingData)
		}

		var verrs req.ValidationErrors
		if !errors.As(nr.Errors(), &verrs) {
			return nil
		}

		r.errs = verrs
		return Code(http.StatusUnprocessableEntity)(d, r)
	}
}

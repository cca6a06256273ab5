package resp

import "github.com/xy-planning-network/trailhead/logger"

// A ResponderOptFn configures a *Responder under construction.
type ResponderOptFn func(*Responder)

// WithLogger sets the logger Err reports failures through.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

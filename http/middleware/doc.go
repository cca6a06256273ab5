/*
The middleware package defines what a middleware is in trailhead and a set of basic middlewares.

The available middlewares are:
- InjectIPAddress
- LogRequest
- Metrics.Instrument
- Normalize
- RateLimit
- ReportPanic
- RequestID

Normalize is the one tying a server to package req:
handlers read the normalized request back with NormalizedRequest.

middleware does not provide a default middleware chain.
Instead, the following can be copy-pasted:

	m := middleware.NewMetrics(nil)
	adpts := []middleware.Adapter{
		middleware.ReportPanic(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		m.Instrument(),
		middleware.LogRequest(log),
		middleware.RateLimit(middleware.NewVisitors(5, 20)),
		middleware.Normalize(log, m, rules),
	}
*/
package middleware

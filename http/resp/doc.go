/*
The resp package provides a high-level API for responding to HTTP requests
with JSON built from a normalized request.

A [Responder] is configured once, application-wide.
Handlers shape each response through [Fn] options:

	d.Json(w, r, resp.Data(nr.Snapshot()), resp.Validated(nr))
*/
package resp

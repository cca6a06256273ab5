/*
Package router defines how a trailhead server routes requests.

[*Router] utilizes [mux.Router] for its implementation,
and so functions as a thin wrapper around that package.

A [Router] leverages a standardized data model - a [Route] -
when registering how requests should be routed.
A path and HTTP methods comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route.
Before a request gets to a handler, though,
the every-request stack and any middlewares added to the Route are called in the order they appear.

Registering many routes sharing one stack, e.g. middleware.Normalize with a rule set,
takes a single call to HandleRoutes.
*/
package router

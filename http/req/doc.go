/*
Package req normalizes an HTTP request into one structured Request.

A Request exposes the request's metadata (method, scheme, host, port, path, query),
its raw parameter groups (server environment, query, body, cookies, headers, uploads)
and a field store: named values drawn from those groups and validated against declared filter.Rules.

Values for a declared field come from the first group holding its name, in the order
cookies, body, query, headers, then whatever the field store already held.
SetFilters replaces the declared rules and rebuilds the store from scratch;
AddFilters layers more rules on top and revalidates only the fields they name.

New builds a Request from a CGI-style server environment;
FromHTTP builds one from a *http.Request.
A body the caller did not parse is decoded per its content type through a mime.Registry,
failing with trailhead.ErrUnsupportedMediaType for content types no Decoder handles.

Bind moves the valid fields into an application struct and checks its "validate" struct tags.
The parade of errors that may arise are translated to trailhead sentinel errors.
*/
package req

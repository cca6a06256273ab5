/*
Package logger provides leveled logging for a trailhead app by defining the required behavior in [Logger]
and providing an implementation of it with [TrailheadLogger].

# Overview

An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, a [TrailheadLogger] initialized with [LogLevelWarn]
only produces messages from [*TrailheadLogger.Warn], [*TrailheadLogger.Error], and [*TrailheadLogger.Fatal].

Log messages emitted by [TrailheadLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2026/04/28 15:55:21 [DEBUG] http/req/fields.go:88 'revalidated fields' log_context: {"data":{"fields":["id","name"]}}

The log context is a JSON-encoded [LogContext].
Header values that carry credentials are masked before being written.

# SentryLogger

When SENTRY_DSN is set, [NewLogger] returns a [SentryLogger],
which additionally ships the error in a [LogContext] to Sentry for WARN and above.
*/
package logger

/*
Package filter validates and sanitizes single request values against declared rules.

A [Rule] names a [Filter] by its [ID] and may carry [Flag]s and [Options].
Filters live in a [Registry]; [NewRegistry] returns one holding every built-in filter,
and new filters are added with [*Registry.Register] without touching calling code.

Rules are checked with [*Registry.Compile] before they are used.
An unknown filter ID or bad options is a configuration error and fails there, never during validation.

Applying a rule yields a [Result], which is one of three states:
  - valid, carrying the validated value
  - invalid, validation was attempted and failed
  - absent, the field was declared but no source held a value for it

A rule without a sequence flag never accepts a sequence or a mapping:
such values resolve to [Invalid] for every filter.
*/
package filter

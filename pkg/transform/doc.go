/*
Package transform implements the outbound message transformation pipeline.

Strategies register against a capability (the kind of screen property they
handle) and run in registration order over every matching property of an
outgoing screen. Later strategies see earlier mutations, so ordering is part
of the contract: register a localization strategy before a keybinding
strategy if the binding label depends on localized text.

A strategy error does not fail the delivery by default; the pipeline skips
the strategy for that property and continues. WithStrictMode turns strategy
errors into delivery errors.
*/
package transform

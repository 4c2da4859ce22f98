// Package compress owns the bounded worker pool that minifies script and
// stylesheet bytes off the serving path. Results always carry servable bytes:
// a transform error, a closed pool, or a panicking worker all degrade to the
// original content with the error attached for the caller to log. The pool is
// created once at startup and drained explicitly on shutdown.
package compress

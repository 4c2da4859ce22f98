// Package server hosts the Fiber HTTP service and the middleware chain shared
// by every route. It exposes a NewApp constructor that attaches panic recovery,
// request-ID tagging and a debug access log, plus helpers for moving headers
// between Fiber's fasthttp types and net/http.Header, which the asset pipeline
// uses as its neutral form. Route registration lives in internal/server/routes so main can
// wire the asset handler, document shim, and diagnostics surface explicitly.
// Future phases may extend this package with TLS or admin surfaces, so keep
// exports narrow and accept explicit dependencies.
package server

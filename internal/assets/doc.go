// Package assets implements the static-asset pipeline: logical paths are
// resolved and confined to the asset root (with plugin and library rewrites),
// freshness is derived from filesystem mtimes (including the synthetic editor
// bootstrap and loader shim), content is read or synthesized, and responses
// are produced by a handler that is a pure function of (method, path, headers)
// so the loopback fetcher can reuse it in-process to inline referenced files.
// Compression is delegated to internal/compress and never fails a request.
package assets

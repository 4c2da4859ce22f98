package server

import (
	"net/http"
	"net/textproto"

	"github.com/gofiber/fiber/v3"
)

// RFC 7230 连接级头部，外加历史遗留的 Proxy-Connection，不随响应透传。
var hopByHopHeaders = func() map[string]struct{} {
	names := []string{
		"Connection",
		"Keep-Alive",
		"Proxy-Authenticate",
		"Proxy-Authorization",
		"Proxy-Connection",
		"Te",
		"Trailer",
		"Transfer-Encoding",
		"Upgrade",
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[textproto.CanonicalMIMEHeaderKey(name)] = struct{}{}
	}
	return set
}()

// RequestHeaders 把 Fiber 请求头转换为 net/http 形式，供资产内核与回环抓取使用。
func RequestHeaders(c fiber.Ctx) http.Header {
	header := http.Header{}
	c.Request().Header.VisitAll(func(key, value []byte) {
		header.Add(string(key), string(value))
	})
	return header
}

// CopyToResponse 将内核产出的响应头写入 Fiber 响应，hop-by-hop 字段不透传。
func CopyToResponse(c fiber.Ctx, headers http.Header) {
	for key, values := range headers {
		if IsHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}

// IsHopByHopHeader reports whether the header is connection-scoped and must
// not be forwarded.
func IsHopByHopHeader(key string) bool {
	_, ok := hopByHopHeaders[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}

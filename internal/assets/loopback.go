package assets

import (
	"context"
	"net/http"

	"github.com/sourcegraph/conc/iter"
)

// FetchResult 捕获一次回环抓取写出的状态、响应头与响应体。
type FetchResult struct {
	URI    string
	Status int
	Header http.Header
	Body   []byte
}

// Loopback 在进程内直接调用 Handler 管线抓取其它资产，没有真实网络往返。
type Loopback struct {
	handler *Handler
}

// NewLoopback 包装 handler 供装配器递归复用。
func NewLoopback(handler *Handler) *Loopback {
	return &Loopback{handler: handler}
}

// Fetch 执行单次进程内请求；内部错误折叠为 500 结果，从不向上抛出。
func (l *Loopback) Fetch(ctx context.Context, method, uri string, header http.Header) FetchResult {
	resp, err := l.handler.Serve(ctx, method, uri, cloneHeader(header))
	if err != nil {
		return FetchResult{URI: uri, Status: http.StatusInternalServerError, Header: make(http.Header)}
	}
	return FetchResult{URI: uri, Status: resp.Status, Header: resp.Header, Body: resp.Body}
}

// FetchMany 并发抓取多个资产；每次调用克隆请求头，保证并发间互不干扰。
func (l *Loopback) FetchMany(ctx context.Context, method string, uris []string, header http.Header) []FetchResult {
	return iter.Map(uris, func(uri *string) FetchResult {
		return l.Fetch(ctx, method, *uri, header)
	})
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return make(http.Header)
	}
	return h.Clone()
}

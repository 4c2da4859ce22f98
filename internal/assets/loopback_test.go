package assets

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestLoopbackFetchExistingFile(t *testing.T) {
	h, _ := newTestHandler(t, Options{}, nil)

	result := h.Loopback().Fetch(context.Background(), http.MethodGet, "js/app.js", nil)
	if result.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", result.Status)
	}
	if string(result.Body) != "var app = 1;\n" {
		t.Fatalf("unexpected body: %q", result.Body)
	}
	if result.URI != "js/app.js" {
		t.Fatalf("结果应回填原始 URI: %q", result.URI)
	}
}

func TestLoopbackFetchMissingFileIs404(t *testing.T) {
	h, _ := newTestHandler(t, Options{}, nil)

	result := h.Loopback().Fetch(context.Background(), http.MethodGet, "js/nothing.js", nil)
	if result.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", result.Status)
	}
	if len(result.Body) != 0 {
		t.Fatalf("404 结果不应携带响应体")
	}
}

func TestLoopbackFoldsInternalErrorTo500(t *testing.T) {
	h, root := newTestHandler(t, Options{}, nil)
	if err := os.RemoveAll(filepath.Join(root, "css")); err != nil {
		t.Fatalf("清理目录失败: %v", err)
	}

	// 聚合扫描失败使 Serve 返回错误,回环层折叠为 500 结果。
	result := h.Loopback().Fetch(context.Background(), http.MethodGet, BootstrapPath, nil)
	if result.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", result.Status)
	}
}

func TestLoopbackFetchManyPreservesOrder(t *testing.T) {
	h, _ := newTestHandler(t, Options{}, nil)

	header := make(http.Header)
	header.Set("X-Request-ID", "loop-1")
	uris := []string{"js/app.js", "js/nothing.js", "css/main.css"}
	results := h.Loopback().FetchMany(context.Background(), http.MethodGet, uris, header)

	if len(results) != len(uris) {
		t.Fatalf("结果数应与请求数一致: %d vs %d", len(results), len(uris))
	}
	for i, uri := range uris {
		if results[i].URI != uri {
			t.Fatalf("结果顺序应与请求顺序一致: got %q at %d", results[i].URI, i)
		}
	}
	if results[0].Status != http.StatusOK || results[2].Status != http.StatusOK {
		t.Fatalf("存在的资产应返回 200: %d, %d", results[0].Status, results[2].Status)
	}
	if results[1].Status != http.StatusNotFound {
		t.Fatalf("缺失的资产应返回 404: %d", results[1].Status)
	}
	if header.Get("X-Request-ID") != "loop-1" {
		t.Fatalf("并发抓取不应改写调用方请求头")
	}
}

package integration

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
)

func TestAssetFlowServesStaticFile(t *testing.T) {
	s := newStack(t, stackOptions{})

	resp := s.request(t, http.MethodGet, "/asset/js/app.js", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "javascript") {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if resp.Header.Get("Last-Modified") == "" || resp.Header.Get("Date") == "" {
		t.Fatalf("expected Last-Modified and Date headers")
	}
	if resp.Header.Get("Expires") != "" {
		t.Fatalf("未配置 MaxAge 时不应有 Expires")
	}
	if body := readBody(t, resp); string(body) != appScript {
		t.Fatalf("body mismatch: %q", body)
	}
}

func TestAssetFlowConditionalRoundTrip(t *testing.T) {
	s := newStack(t, stackOptions{})

	first := s.request(t, http.MethodGet, "/asset/css/main.css", nil)
	if first.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", first.StatusCode)
	}
	lastModified := first.Header.Get("Last-Modified")
	if lastModified == "" {
		t.Fatalf("expected Last-Modified header")
	}

	header := make(http.Header)
	header.Set("If-Modified-Since", lastModified)
	second := s.request(t, http.MethodGet, "/asset/css/main.css", header)
	if second.StatusCode != fiber.StatusNotModified {
		t.Fatalf("expected 304, got %d", second.StatusCode)
	}
	if body := readBody(t, second); len(body) != 0 {
		t.Fatalf("304 响应体应为空, got %q", body)
	}

	// 文件变新后,同一条件头应重新返回完整内容。
	stale, err := http.ParseTime(lastModified)
	if err != nil {
		t.Fatalf("解析 Last-Modified 失败: %v", err)
	}
	header.Set("If-Modified-Since", stale.Add(-time.Minute).Format(http.TimeFormat))
	third := s.request(t, http.MethodGet, "/asset/css/main.css", header)
	if third.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", third.StatusCode)
	}
}

func TestAssetFlowHeadAndUnsupportedMethods(t *testing.T) {
	s := newStack(t, stackOptions{})

	head := s.request(t, http.MethodHead, "/asset/js/app.js", nil)
	if head.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", head.StatusCode)
	}
	if body := readBody(t, head); len(body) != 0 {
		t.Fatalf("HEAD 响应体应为空, got %q", body)
	}

	post := s.request(t, http.MethodPost, "/asset/js/app.js", nil)
	if post.StatusCode != fiber.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", post.StatusCode)
	}
	if allow := post.Header.Get("Allow"); allow != "HEAD, GET" {
		t.Fatalf("unexpected Allow header: %q", allow)
	}
}

func TestAssetFlowMissingAndTraversal(t *testing.T) {
	s := newStack(t, stackOptions{})

	missing := s.request(t, http.MethodGet, "/asset/js/ghost.js", nil)
	if missing.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}

	traversal := s.request(t, http.MethodGet, "/asset/js/..%2f..%2fsecret.txt", nil)
	if traversal.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for traversal, got %d", traversal.StatusCode)
	}
}

func TestAssetFlowCacheHeadersWithMaxAge(t *testing.T) {
	s := newStack(t, stackOptions{maxAge: 6 * time.Hour})

	resp := s.request(t, http.MethodGet, "/asset/js/app.js", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "max-age=21600" {
		t.Fatalf("unexpected Cache-Control: %s", cc)
	}
	if resp.Header.Get("Expires") == "" {
		t.Fatalf("expected Expires header")
	}
}

func TestAssetFlowWhitelistedDependency(t *testing.T) {
	s := newStack(t, stackOptions{})

	resp := s.request(t, http.MethodGet, "/asset/plugins/underscore/underscore.js", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); string(body) != "var _ = {};\n" {
		t.Fatalf("依赖目录内容不匹配: %q", body)
	}
}

func TestAssetFlowDocumentShim(t *testing.T) {
	s := newStack(t, stackOptions{})

	shell := s.request(t, http.MethodGet, "/d/notes-2024", nil)
	if shell.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", shell.StatusCode)
	}
	if body := readBody(t, shell); !bytes.Contains(body, []byte("/asset/js/editor.js")) {
		t.Fatalf("外壳应引用引导脚本: %s", body)
	}

	redirect := s.request(t, http.MethodGet, "/d/my%20doc?showChat=false", nil)
	if redirect.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", redirect.StatusCode)
	}
	if loc := redirect.Header.Get("Location"); loc != "/d/my-doc?showChat=false" {
		t.Fatalf("unexpected Location: %q", loc)
	}
}

package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/asset-hub/asset-hub/internal/assets"
	"github.com/asset-hub/asset-hub/internal/compress"
	"github.com/asset-hub/asset-hub/internal/ident"
	"github.com/asset-hub/asset-hub/internal/plugin"
	"github.com/asset-hub/asset-hub/internal/server"
	"github.com/asset-hub/asset-hub/internal/server/routes"
)

const (
	appScript = "var total = 0;\nfor (var i = 0; i < 10; i++) {\n  total += i;\n}\n"
	mainStyle = "body { margin: 0; }\n"
)

// stack 把整条服务链（解析器、压缩池、插件注册表、Fiber 路由）装配成
// 可直接用 app.Test 驱动的测试夹具。
type stack struct {
	app      *fiber.App
	base     string
	root     string
	registry *plugin.Registry
	pool     *compress.Pool
}

type stackOptions struct {
	minify     bool
	maxAge     time.Duration
	skip       []string
	pluginRoot string
	bootstrap  string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
}

func newStack(t *testing.T, opts stackOptions) *stack {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "static")
	bootstrap := opts.bootstrap
	if bootstrap == "" {
		bootstrap = "var EditorBootstrap = {embedded: {}};\n"
	}
	writeFile(t, filepath.Join(root, "js", "editor.js"), bootstrap)
	writeFile(t, filepath.Join(root, "js", "app.js"), appScript)
	writeFile(t, filepath.Join(root, "css", "main.css"), mainStyle)
	writeFile(t, filepath.Join(base, "deps", "underscore", "underscore.js"), "var _ = {};\n")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry, err := plugin.NewRegistry(opts.pluginRoot, logger)
	if err != nil {
		t.Fatalf("registry error: %v", err)
	}

	pool, err := compress.NewPool(2, nil, logger)
	if err != nil {
		t.Fatalf("pool error: %v", err)
	}
	t.Cleanup(func() { _ = pool.Shutdown(time.Second) })

	resolver, err := assets.NewResolver(root, "deps", registry)
	if err != nil {
		t.Fatalf("resolver error: %v", err)
	}
	handler, err := assets.NewHandler(
		resolver,
		assets.NewOracle(resolver.Root()),
		assets.NewAssembler(logger, opts.minify),
		pool,
		logger,
		assets.Options{
			MaxAge:       opts.maxAge,
			Minify:       opts.minify,
			SkipPatterns: opts.skip,
		},
	)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	app, err := server.NewApp(server.AppOptions{Logger: logger, ListenPort: 5600})
	if err != nil {
		t.Fatalf("app error: %v", err)
	}
	routes.RegisterAssetRoutes(app, handler, logger)
	routes.RegisterDocumentRoutes(app, ident.Default(), logger)
	routes.RegisterStatusRoutes(app, routes.StatusInfo{
		AssetRoot:     root,
		Minify:        opts.minify,
		PoolWorkers:   pool.Size(),
		MaxAgeSeconds: int(opts.maxAge / time.Second),
		WatchPlugins:  false,
	}, registry)

	return &stack{app: app, base: base, root: root, registry: registry, pool: pool}
}

func (s *stack) request(t *testing.T, method, target string, header http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "http://asset.local"+target, nil)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("读取响应体失败: %v", err)
	}
	resp.Body.Close()
	return body
}

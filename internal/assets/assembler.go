package assets

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"

	"github.com/sirupsen/logrus"
)

//go:embed loader_kernel.js
var loaderKernel string

// includeDirective 匹配引导脚本中的内嵌指令，如 $$INCLUDE_JS('js/editor_core.js')。
var includeDirective = regexp.MustCompile(`\$\$INCLUDE_[A-Za-z0-9_]*\(\s*['"]([^'"]+)['"]\s*\)`)

// Fetcher 抽象回环抓取能力，测试可注入桩实现；生产实现见 Loopback。
type Fetcher interface {
	Fetch(ctx context.Context, method, uri string, header http.Header) FetchResult
	FetchMany(ctx context.Context, method string, uris []string, header http.Header) []FetchResult
}

// Assembler 产出资产的原始字节：普通文件直接读取，两个虚拟文件合成内容。
type Assembler struct {
	logger *logrus.Logger
	minify bool
}

// NewAssembler 构建内容装配器；minify 控制引导脚本是否内联其引用的资产。
func NewAssembler(logger *logrus.Logger, minify bool) *Assembler {
	return &Assembler{logger: logger, minify: minify}
}

// Read 返回资产内容。调用方（Handler）只在存在性确认后调用，缺失文件的
// 读取错误按服务器错误向上传播。
func (a *Assembler) Read(ctx context.Context, asset Asset, reqHeader http.Header, fetch Fetcher) ([]byte, error) {
	switch asset.Kind {
	case KindLoaderShim:
		return loaderSnippet(), nil
	case KindBootstrap:
		return a.assembleBootstrap(ctx, asset, reqHeader, fetch)
	default:
		return os.ReadFile(asset.Resolved)
	}
}

// loaderSnippet 由内嵌内核源码生成垫片脚本，没有底层文件。
func loaderSnippet() []byte {
	var b bytes.Buffer
	b.WriteString(loaderKernel)
	b.WriteString("\nwindow.loadModule = window.require;\n")
	return b.Bytes()
}

// assembleBootstrap 读取真实引导脚本；压缩开启时扫描 $$INCLUDE 指令，
// 经回环抓取把引用的资产（外加垫片本身）以字面量映射追加到脚本尾部。
func (a *Assembler) assembleBootstrap(ctx context.Context, asset Asset, reqHeader http.Header, fetch Fetcher) ([]byte, error) {
	raw, err := os.ReadFile(asset.Resolved)
	if err != nil {
		return nil, err
	}
	if !a.minify || fetch == nil {
		return raw, nil
	}

	uris := collectIncludes(raw)
	// 客户端的条件头会让回环抓取返回空体 304，剥离后再转发。
	header := cloneHeader(reqHeader)
	header.Del("If-Modified-Since")

	results := fetch.FetchMany(ctx, http.MethodGet, uris, header)

	var out bytes.Buffer
	out.Write(raw)
	out.WriteString("\n")
	for _, res := range results {
		switch {
		case res.Status >= 200 && res.Status < 300:
			writeEmbedded(&out, res.URI, res.Body)
		case res.Status == http.StatusNotFound:
			pathLit, _ := json.Marshal(res.URI)
			fmt.Fprintf(&out, "EditorBootstrap.embedded[%s] = null;\n", pathLit)
		default:
			a.logger.WithFields(logrus.Fields{
				"action": "bootstrap_inline",
				"uri":    res.URI,
				"status": res.Status,
			}).Warn("bootstrap_inline_skipped")
		}
	}
	return out.Bytes(), nil
}

// collectIncludes 去重收集指令引用的逻辑路径，并确保垫片路径总在其中。
func collectIncludes(raw []byte) []string {
	matches := includeDirective.FindAllSubmatch(raw, -1)
	uris := make([]string, 0, len(matches)+1)
	seen := make(map[string]struct{}, len(matches)+1)
	for _, m := range matches {
		uri := string(m[1])
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}
		uris = append(uris, uri)
	}
	if _, dup := seen[LoaderPath]; !dup {
		uris = append(uris, LoaderPath)
	}
	return uris
}

func writeEmbedded(out *bytes.Buffer, uri string, body []byte) {
	pathLit, _ := json.Marshal(uri)
	bodyLit, _ := json.Marshal(string(body))
	fmt.Fprintf(out, "EditorBootstrap.embedded[%s] = %s;\n", pathLit, bodyLit)
}

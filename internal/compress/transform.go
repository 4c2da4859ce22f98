package compress

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Transformer 把脚本/样式原文变换为更紧凑的等价形式。
type Transformer interface {
	Script(raw []byte) ([]byte, error)
	Stylesheet(raw []byte, resolved, root string) ([]byte, error)
}

// NewTransformer 返回基于 tdewolff/minify 的默认实现。
func NewTransformer() Transformer {
	m := minify.New()
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("text/css", css.Minify)
	return &codeTransformer{m: m}
}

type codeTransformer struct {
	m *minify.M
}

func (t *codeTransformer) Script(raw []byte) ([]byte, error) {
	return t.m.Bytes("text/javascript", raw)
}

// Stylesheet 先在资源根目录内联相对 @import，再交给压缩器。
func (t *codeTransformer) Stylesheet(raw []byte, resolved, root string) ([]byte, error) {
	inlined := inlineImports(raw, resolved, root, 0, make(map[string]struct{}))
	return t.m.Bytes("text/css", inlined)
}

var (
	cssImport = regexp.MustCompile(`@import\s+(?:url\(\s*)?['"]?([^'")\s]+)['"]?\s*\)?\s*;`)
	cssURL    = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
)

// 防御导入环与病态嵌套。
const maxImportDepth = 8

// inlineImports 把指向根目录内文件的相对 @import 替换为其内容（递归），
// 其余 import（绝对 URL、越界路径、读取失败）原样保留，交给浏览器处理。
func inlineImports(raw []byte, resolved, root string, depth int, visited map[string]struct{}) []byte {
	if depth > maxImportDepth {
		return raw
	}

	return cssImport.ReplaceAllFunc(raw, func(stmt []byte) []byte {
		m := cssImport.FindSubmatch(stmt)
		if m == nil {
			return stmt
		}
		target := string(m[1])
		if isRemoteRef(target) {
			return stmt
		}

		var abs string
		if strings.HasPrefix(target, "/") {
			abs = filepath.Join(root, filepath.FromSlash(target))
		} else {
			abs = filepath.Join(filepath.Dir(resolved), filepath.FromSlash(target))
		}
		if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return stmt
		}
		if _, seen := visited[abs]; seen {
			return nil
		}
		visited[abs] = struct{}{}

		body, err := os.ReadFile(abs)
		if err != nil {
			return stmt
		}
		body = inlineImports(body, abs, root, depth+1, visited)
		return rebaseURLs(body, filepath.Dir(abs), filepath.Dir(resolved))
	})
}

// rebaseURLs 把内联进来的样式中的相对 url() 引用改写为相对外层样式的路径。
func rebaseURLs(body []byte, fromDir, toDir string) []byte {
	rel, err := filepath.Rel(toDir, fromDir)
	if err != nil || rel == "." {
		return body
	}
	prefix := filepath.ToSlash(rel)

	return cssURL.ReplaceAllFunc(body, func(ref []byte) []byte {
		m := cssURL.FindSubmatch(ref)
		if m == nil {
			return ref
		}
		target := string(m[1])
		if isRemoteRef(target) || strings.HasPrefix(target, "/") {
			return ref
		}
		return []byte("url(" + path.Join(prefix, target) + ")")
	})
}

func isRemoteRef(target string) bool {
	return strings.Contains(target, "://") ||
		strings.HasPrefix(target, "//") ||
		strings.HasPrefix(target, "data:")
}

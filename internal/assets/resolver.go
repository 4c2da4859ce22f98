package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/asset-hub/asset-hub/internal/plugin"
)

// PluginLookup 抽象插件注册表查询能力（见 internal/plugin），测试可注入桩实现。
type PluginLookup interface {
	Lookup(name string) (plugin.Descriptor, bool)
}

// libraryWhitelist 列出允许经 plugins/<name> 形式直接映射到相邻依赖目录的
// 第三方库名，绕过通用解析以避免裸包名与入口文件之间的歧义。
var libraryWhitelist = map[string]struct{}{
	"async":      {},
	"js-cookie":  {},
	"split-grid": {},
	"underscore": {},
	"unorm":      {},
}

// Resolver 把客户端可见的逻辑路径映射为真实文件路径，并强制根目录约束。
type Resolver struct {
	root    string
	depDir  string
	plugins PluginLookup
}

// NewResolver 以 root 为资源根目录构建解析器。depDir 是与根目录相邻的
// 依赖目录名（如 deps），白名单库会被重写到该目录下。
func NewResolver(root, depDir string, plugins PluginLookup) (*Resolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("asset root required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve asset root: %w", err)
	}
	if depDir == "" {
		depDir = "deps"
	}
	return &Resolver{root: abs, depDir: depDir, plugins: plugins}, nil
}

// Root 返回资源根目录的绝对路径。
func (r *Resolver) Root() string {
	return r.root
}

// Resolve 规范化 logical 并应用插件/库重写；任何越界或无法规范化的路径
// 一律返回 ErrNotFound，不区分穿越尝试与真实缺失。
func (r *Resolver) Resolve(logical string) (Asset, error) {
	abs := filepath.Join(r.root, filepath.FromSlash(logical))
	// Clean 之后仍可能残留字面 ".."（如文件名内嵌），一并剥除兜底。
	if strings.Contains(abs, "..") {
		abs = filepath.Clean(strings.ReplaceAll(abs, "..", ""))
	}

	prefix := r.root + string(filepath.Separator)
	if !strings.HasPrefix(abs, prefix) {
		return Asset{}, ErrNotFound
	}

	rel := filepath.ToSlash(abs[len(prefix):])
	kind := kindOfLogical(rel)

	if rest, ok := strings.CutPrefix(rel, "plugins/"); ok {
		if rewritten, ok := r.rewritePlugin(rest); ok {
			return Asset{Logical: rewritten.Logical, Kind: kind, Resolved: rewritten.Resolved}, nil
		}
	}

	return Asset{Logical: rel, Kind: kind, Resolved: abs}, nil
}

// rewritePlugin 处理 plugins/<name>/<rest> 形式：白名单库直接重写到相邻
// 依赖目录（不经插件查询）；已注册插件的 static/ 子路径重写到插件安装目录；
// 其余保持原样。
func (r *Resolver) rewritePlugin(rest string) (Asset, bool) {
	name, sub, _ := strings.Cut(rest, "/")
	if name == "" {
		return Asset{}, false
	}

	if _, ok := libraryWhitelist[name]; ok {
		logical := "../" + r.depDir + "/" + name
		if sub != "" {
			logical += "/" + sub
		}
		resolved := filepath.Join(r.root, filepath.FromSlash(logical))
		return Asset{Logical: logical, Resolved: resolved}, true
	}

	if r.plugins != nil {
		if desc, ok := r.plugins.Lookup(name); ok && strings.HasPrefix(sub, "static/") {
			resolved := filepath.Join(desc.Path, filepath.FromSlash(sub))
			logical := resolved
			if relToRoot, err := filepath.Rel(r.root, resolved); err == nil {
				logical = relToRoot
			}
			return Asset{Logical: filepath.ToSlash(logical), Resolved: resolved}, true
		}
	}

	return Asset{}, false
}

func kindOfLogical(rel string) Kind {
	switch rel {
	case BootstrapPath:
		return KindBootstrap
	case LoaderPath:
		return KindLoaderShim
	default:
		return KindFile
	}
}

package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Descriptor 描述一个已注册插件：名称即一级子目录名，Path 为安装目录绝对路径。
type Descriptor struct {
	Name string
	Path string
}

// StaticDir 返回插件静态资源目录（<Path>/static）的绝对路径。
func (d Descriptor) StaticDir() string {
	return filepath.Join(d.Path, "static")
}

// Registry 提供插件名到安装目录的查询能力，支持运行期重新扫描。
// 扫描规则：root 下包含 static/ 子目录的一级目录即视为插件。
type Registry struct {
	root   string
	logger *logrus.Logger

	mu      sync.RWMutex
	plugins map[string]Descriptor
}

// NewRegistry 扫描 root 并构建插件映射。root 为空表示未启用插件，
// 返回的注册表所有查询都会落空。
func NewRegistry(root string, logger *logrus.Logger) (*Registry, error) {
	r := &Registry{
		root:    strings.TrimSpace(root),
		logger:  logger,
		plugins: make(map[string]Descriptor),
	}
	if r.root == "" {
		return r, nil
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Root 返回被扫描的插件根目录，未启用时为空字符串。
func (r *Registry) Root() string {
	if r == nil {
		return ""
	}
	return r.root
}

// Reload 重新扫描插件目录并整体替换当前映射。
func (r *Registry) Reload() error {
	if r == nil || r.root == "" {
		return nil
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("扫描插件目录失败: %w", err)
	}

	next := make(map[string]Descriptor, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		dir := filepath.Join(r.root, name)
		info, statErr := os.Stat(filepath.Join(dir, "static"))
		if statErr != nil || !info.IsDir() {
			continue
		}
		next[name] = Descriptor{Name: name, Path: dir}
	}

	r.mu.Lock()
	r.plugins = next
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"action": "plugin_scan",
			"count":  len(next),
		}).Debug("插件扫描完成")
	}
	return nil
}

// Lookup 根据插件名查找描述符。
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.plugins[name]
	return d, ok
}

// List 返回按名称排序的插件列表，用于调试或 /-/status 输出。
func (r *Registry) List() []Descriptor {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	result := make([]Descriptor, 0, len(r.plugins))
	for _, d := range r.plugins {
		result = append(result, d)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Len 返回当前注册的插件数量。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// moduleRoot 从测试工作目录向上找 go.mod 定位仓库根，只算一次。
var moduleRoot = sync.OnceValue(func() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
})

// configFixture 返回 internal/config/testdata 下的样例配置路径。
func configFixture(t *testing.T, name string) string {
	t.Helper()
	root := moduleRoot()
	if root == "" {
		t.Fatal("无法定位仓库根目录")
	}
	return filepath.Join(root, "internal", "config", "testdata", name)
}

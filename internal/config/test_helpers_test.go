package config

import (
	"os"
	"path/filepath"
	"testing"
)

// fixturePath 返回 testdata 下的配置样例路径。
func fixturePath(name string) string {
	return filepath.Join("testdata", name)
}

// tempConfigFile 把内容写进临时 TOML 文件并返回路径。
func tempConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "asset-hub.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

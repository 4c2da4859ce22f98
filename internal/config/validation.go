package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate 做语义级校验，非法配置在启动前被拦下。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if strings.TrimSpace(g.AssetRoot) == "" {
		return newFieldError("Global.AssetRoot", "不能为空")
	}
	if strings.TrimSpace(g.DependencyDir) == "" {
		return newFieldError("Global.DependencyDir", "不能为空")
	}
	if strings.ContainsAny(g.DependencyDir, "/\\") {
		return newFieldError("Global.DependencyDir", "只能是目录名，不允许包含路径分隔符")
	}
	if g.PoolWorkers < 1 {
		return newFieldError("Global.PoolWorkers", "必须大于等于 1")
	}
	if g.MaxAge.DurationValue() < 0 {
		return newFieldError("Global.MaxAge", "不能为负数")
	}
	if g.ShutdownTimeout.DurationValue() <= 0 {
		return newFieldError("Global.ShutdownTimeout", "必须大于 0")
	}
	if g.WatchPlugins && !g.PluginsEnabled() {
		return newFieldError("Global.WatchPlugins", "需要同时配置 PluginRoot")
	}

	for i, pattern := range g.MinifySkip {
		if strings.TrimSpace(pattern) == "" {
			return newFieldError(skipField(i), "不能为空")
		}
		if !doublestar.ValidatePattern(pattern) {
			return newFieldError(skipField(i), fmt.Sprintf("无效的 glob 模式: %s", pattern))
		}
	}

	return nil
}

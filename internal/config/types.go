package config

import (
	"strings"
	"time"
)

// Duration 兼容 Go duration 字面量与纯数字秒值两种配置写法。
type Duration time.Duration

// UnmarshalText 与解码钩子共用同一套解析规则。
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := parseDurationText(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DurationValue 返回底层 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述静态资源服务的全局运行时行为。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	AssetRoot       string   `mapstructure:"AssetRoot"`
	DependencyDir   string   `mapstructure:"DependencyDir"`
	PluginRoot      string   `mapstructure:"PluginRoot"`
	WatchPlugins    bool     `mapstructure:"WatchPlugins"`
	Minify          bool     `mapstructure:"Minify"`
	MinifySkip      []string `mapstructure:"MinifySkip"`
	MaxAge          Duration `mapstructure:"MaxAge"`
	PoolWorkers     int      `mapstructure:"PoolWorkers"`
	ShutdownTimeout Duration `mapstructure:"ShutdownTimeout"`
}

// Config 对应 TOML 文件的顶层结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}

// CacheHeadersEnabled 表示是否需要输出 Expires 与 Cache-Control 响应头。
func (g GlobalConfig) CacheHeadersEnabled() bool {
	return g.MaxAge.DurationValue() > 0
}

// MaxAgeSeconds 返回整数秒的 max-age 值，供响应头与诊断接口使用。
func (g GlobalConfig) MaxAgeSeconds() int {
	return int(g.MaxAge.DurationValue() / time.Second)
}

// PluginsEnabled 表示是否启用插件目录扫描。
func (g GlobalConfig) PluginsEnabled() bool {
	return strings.TrimSpace(g.PluginRoot) != ""
}

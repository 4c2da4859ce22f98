package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取 TOML 配置，注入默认值、执行校验并把目录字段转成绝对路径。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := resolveDirs(&cfg.Global); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("AssetRoot", "./static")
	v.SetDefault("DependencyDir", "deps")
	v.SetDefault("PluginRoot", "")
	v.SetDefault("WatchPlugins", false)
	v.SetDefault("Minify", true)
	v.SetDefault("MinifySkip", []string{})
	v.SetDefault("MaxAge", 0)
	v.SetDefault("PoolWorkers", 2)
	v.SetDefault("ShutdownTimeout", "5s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if g.PoolWorkers == 0 {
		g.PoolWorkers = 2
	}
	if g.DependencyDir == "" {
		g.DependencyDir = "deps"
	}
	if g.ShutdownTimeout.DurationValue() == 0 {
		g.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// resolveDirs 把资源与插件目录转成绝对路径，后续的前缀比较都基于绝对形式。
func resolveDirs(g *GlobalConfig) error {
	absRoot, err := filepath.Abs(g.AssetRoot)
	if err != nil {
		return fmt.Errorf("无法解析资源目录: %w", err)
	}
	g.AssetRoot = absRoot

	if !g.PluginsEnabled() {
		return nil
	}

	absPlugins, err := filepath.Abs(g.PluginRoot)
	if err != nil {
		return fmt.Errorf("无法解析插件目录: %w", err)
	}
	g.PluginRoot = absPlugins
	return nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	durationType := reflect.TypeOf(Duration(0))

	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}

		switch v := data.(type) {
		case Duration:
			return v, nil
		case time.Duration:
			return Duration(v), nil
		case string:
			return parseDurationText(v)
		case int:
			return secondsToDuration(float64(v)), nil
		case int64:
			return secondsToDuration(float64(v)), nil
		case float64:
			return secondsToDuration(v), nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// parseDurationText 接受 Go duration 字面量（"6h"）或纯数字秒数（"30"）。
func parseDurationText(s string) (Duration, error) {
	if s == "" {
		return Duration(0), nil
	}
	if parsed, err := time.ParseDuration(s); err == nil {
		return Duration(parsed), nil
	}
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		return secondsToDuration(seconds), nil
	}
	return Duration(0), fmt.Errorf("无法解析 Duration 字段: %s", s)
}

func secondsToDuration(seconds float64) Duration {
	return Duration(time.Duration(seconds * float64(time.Second)))
}

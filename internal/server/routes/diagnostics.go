package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/asset-hub/asset-hub/internal/plugin"
	"github.com/asset-hub/asset-hub/internal/version"
)

// StatusInfo 汇总 /-/status 暴露的运行参数，由 main 在启动时填充。
type StatusInfo struct {
	AssetRoot     string
	Minify        bool
	PoolWorkers   int
	MaxAgeSeconds int
	WatchPlugins  bool
}

// RegisterStatusRoutes 暴露 /-/status 诊断接口，供运维确认生效配置与插件绑定。
func RegisterStatusRoutes(app *fiber.App, info StatusInfo, registry *plugin.Registry) {
	if app == nil {
		return
	}

	app.Get("/-/status", func(c fiber.Ctx) error {
		payload := fiber.Map{
			"version":         version.Full(),
			"asset_root":      info.AssetRoot,
			"minify":          info.Minify,
			"pool_workers":    info.PoolWorkers,
			"max_age_seconds": info.MaxAgeSeconds,
			"plugin_watch":    info.WatchPlugins,
			"plugins":         encodePlugins(registry.List()),
		}
		return c.JSON(payload)
	})
}

type pluginPayload struct {
	Name      string `json:"name"`
	StaticDir string `json:"static_dir"`
}

// encodePlugins 保持 Registry.List 的名称排序，输出稳定便于 diff。
func encodePlugins(descriptors []plugin.Descriptor) []pluginPayload {
	if len(descriptors) == 0 {
		return nil
	}
	result := make([]pluginPayload, 0, len(descriptors))
	for _, d := range descriptors {
		result = append(result, pluginPayload{
			Name:      d.Name,
			StaticDir: d.StaticDir(),
		})
	}
	return result
}

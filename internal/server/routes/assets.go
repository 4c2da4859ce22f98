package routes

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/asset-hub/asset-hub/internal/assets"
	"github.com/asset-hub/asset-hub/internal/server"
)

// RegisterAssetRoutes 把资产内核挂到 /asset/* 前缀。方法分派（GET/HEAD/405）
// 在内核里完成，这里只做 Fiber 与纯函数之间的翻译。
func RegisterAssetRoutes(app *fiber.App, handler *assets.Handler, logger *logrus.Logger) {
	if app == nil || handler == nil {
		return
	}

	app.All("/asset/*", func(c fiber.Ctx) error {
		logical := strings.TrimPrefix(requestPath(c), "/asset/")

		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		resp, err := handler.Serve(ctx, c.Method(), logical, server.RequestHeaders(c))
		if err != nil {
			return writeAssetError(c, logger, err)
		}

		server.CopyToResponse(c, resp.Header)
		if resp.Header.Get("Content-Type") == "" {
			c.Response().Header.Del("Content-Type")
		}
		return c.Status(resp.Status).Send(resp.Body)
	})
}

func requestPath(c fiber.Ctx) string {
	if c == nil {
		return "/"
	}
	uri := c.Request().URI()
	if uri == nil {
		return "/"
	}
	pathVal := string(uri.Path())
	if pathVal == "" {
		return "/"
	}
	return pathVal
}

func writeAssetError(c fiber.Ctx, logger *logrus.Logger, err error) error {
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"action":     "asset_route",
			"path":       requestPath(c),
			"request_id": server.RequestID(c),
			"error":      err.Error(),
		}).Error("资产内核内部失败")
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "asset_internal",
	})
}

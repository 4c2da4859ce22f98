package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppOptions carries the dependencies NewApp needs to assemble the application.
type AppOptions struct {
	Logger     *logrus.Logger
	ListenPort int
}

const contextKeyRequestID = "_asset_hub_request_id"

// NewApp builds a Fiber application with recovery, request-ID tagging and a
// debug access log. Routes are mounted separately by internal/server/routes.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())
	app.Use(accessLogMiddleware(opts.Logger))

	return app, nil
}

// requestContextMiddleware 为每个请求生成 ID，并提前写入响应头，
// 便于把访问日志与客户端看到的响应关联起来。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// accessLogMiddleware 在 Debug 级别记录请求完成情况；资产请求的业务
// 日志由 handler 自己输出，这里只补齐非资产路由的观测面。
func accessLogMiddleware(logger *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		logger.WithFields(logrus.Fields{
			"action":     "http_access",
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"elapsed_ms": time.Since(started).Milliseconds(),
			"request_id": RequestID(c),
		}).Debug("request_complete")

		return err
	}
}

// RequestID returns the identifier the middleware attached to this request.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

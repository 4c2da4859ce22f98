package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/asset-hub/asset-hub/internal/ident"
)

// editorShell 是文档页的 HTML 外壳，编辑器行为全部由引导脚本注入。
const editorShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>asset-hub editor</title>
<link rel="stylesheet" href="/asset/css/main.css">
</head>
<body>
<div id="editor"></div>
<script src="/asset/js/editor.js"></script>
</body>
</html>
`

// RegisterDocumentRoutes 挂载文档入口：合法标识直接渲染编辑器外壳；
// 可规范化的标识 302 到规范地址并保留查询串；无法规范化则 404。
func RegisterDocumentRoutes(app *fiber.App, sanitizer ident.Sanitizer, logger *logrus.Logger) {
	if app == nil || sanitizer == nil {
		return
	}

	app.Get("/d/:docID", func(c fiber.Ctx) error {
		docID := c.Params("docID")
		if sanitizer.IsValid(docID) {
			c.Set("Content-Type", "text/html; charset=utf-8")
			return c.SendString(editorShell)
		}

		canonical := sanitizer.Sanitize(docID)
		if canonical == "" || canonical == docID {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"action": "document_route",
					"doc_id": docID,
				}).Warn("文档标识无法规范化")
			}
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "document_not_found",
			})
		}

		location := "/d/" + canonical
		if query := string(c.Request().URI().QueryString()); query != "" {
			location += "?" + query
		}
		c.Set("Location", location)
		return c.SendStatus(fiber.StatusFound)
	})
}

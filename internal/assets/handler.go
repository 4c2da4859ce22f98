package assets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofiber/utils/v2"
	"github.com/sirupsen/logrus"

	"github.com/asset-hub/asset-hub/internal/compress"
	"github.com/asset-hub/asset-hub/internal/logging"
)

// Response 是一次资产请求的完整结果，由 Fiber 适配层写出，也被回环抓取复用。
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Pool 抽象压缩池，测试可注入同步桩实现。
type Pool interface {
	Compress(ctx context.Context, item compress.WorkItem) compress.Result
}

// Options 汇总处理器的行为开关。
type Options struct {
	// MaxAge 大于零时为命中资产输出 Expires/Cache-Control 头。
	MaxAge time.Duration
	// Minify 为真且 Pool 可用时压缩脚本与样式。
	Minify bool
	// SkipPatterns 是跳过压缩的 doublestar 模式（按逻辑路径匹配）。
	SkipPatterns []string
}

// Handler 驱动单次资产请求：解析 → 新鲜度 → 条件命中 → 读取 → 压缩。
// Serve 是 (method, path, headers) 的纯函数，回环抓取直接递归调用它。
type Handler struct {
	resolver  *Resolver
	oracle    *Oracle
	assembler *Assembler
	pool      Pool
	logger    *logrus.Logger
	opts      Options
	loop      *Loopback
}

// NewHandler 校验依赖并构建处理器。pool 可以为 nil（等价于关闭压缩）。
func NewHandler(resolver *Resolver, oracle *Oracle, assembler *Assembler, pool Pool, logger *logrus.Logger, opts Options) (*Handler, error) {
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if oracle == nil {
		return nil, errors.New("oracle is required")
	}
	if assembler == nil {
		return nil, errors.New("assembler is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	h := &Handler{
		resolver:  resolver,
		oracle:    oracle,
		assembler: assembler,
		pool:      pool,
		logger:    logger,
		opts:      opts,
	}
	h.loop = NewLoopback(h)
	return h, nil
}

// Loopback 返回复用本处理器的进程内抓取器。
func (h *Handler) Loopback() *Loopback {
	return h.loop
}

// Serve 处理一次资产请求。返回 error 表示内部失败（聚合扫描、读取失败），
// 适配层应翻译为 500；所有业务性失败都折叠进 Response 状态码。
func (h *Handler) Serve(ctx context.Context, method, logical string, reqHeader http.Header) (*Response, error) {
	started := time.Now()
	if reqHeader == nil {
		reqHeader = make(http.Header)
	}
	resp := &Response{Header: make(http.Header)}

	asset, err := h.resolver.Resolve(logical)
	if err != nil {
		resp.Status = http.StatusNotFound
		h.logServe(method, logical, KindFile, resp.Status, started, nil)
		return resp, nil
	}

	record, err := h.oracle.Stat(ctx, asset, DefaultStatDepth)
	if err != nil {
		h.logServe(method, asset.Logical, asset.Kind, http.StatusInternalServerError, started, err)
		return nil, err
	}

	// 时间戳先于存在性落盘到响应头：缺失文件也可能借父目录时间戳
	// 带缓存头返回 404，这是沿袭下来的兼容行为。
	var lastModified time.Time
	if !record.LastModified.IsZero() {
		lastModified = record.LastModified.Truncate(time.Second)
		now := time.Now().UTC()
		resp.Header.Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
		resp.Header.Set("Date", now.Format(http.TimeFormat))
		if h.opts.MaxAge > 0 {
			resp.Header.Set("Expires", now.Add(h.opts.MaxAge).Format(http.TimeFormat))
			resp.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(h.opts.MaxAge/time.Second)))
		}
	}

	if !record.Exists {
		resp.Status = http.StatusNotFound
		h.logServe(method, asset.Logical, asset.Kind, resp.Status, started, nil)
		return resp, nil
	}

	if since := reqHeader.Get("If-Modified-Since"); since != "" && !lastModified.IsZero() {
		if parsed, parseErr := http.ParseTime(since); parseErr == nil && !parsed.Before(lastModified) {
			resp.Status = http.StatusNotModified
			h.logServe(method, asset.Logical, asset.Kind, resp.Status, started, nil)
			return resp, nil
		}
	}

	contentType := utils.GetMIME(filepath.Ext(asset.Resolved))
	// GetMIME 对未知扩展名兜底为 octet-stream，这里宁可不声明类型。
	if contentType == "application/octet-stream" {
		contentType = ""
	}

	switch method {
	case http.MethodHead:
		if contentType != "" {
			resp.Header.Set("Content-Type", contentType)
		}
		resp.Status = http.StatusOK

	case http.MethodGet:
		body, readErr := h.assembler.Read(ctx, asset, reqHeader, h.loop)
		if readErr != nil {
			h.logServe(method, asset.Logical, asset.Kind, http.StatusInternalServerError, started, readErr)
			return nil, readErr
		}
		if contentType != "" {
			resp.Header.Set("Content-Type", contentType)
		}
		resp.Status = http.StatusOK
		resp.Body = h.maybeCompress(ctx, asset, contentType, body)

	default:
		resp.Header.Set("Allow", "HEAD, GET")
		resp.Status = http.StatusMethodNotAllowed
	}

	h.logServe(method, asset.Logical, asset.Kind, resp.Status, started, nil)
	return resp, nil
}

// maybeCompress 在开启压缩且逻辑路径未被跳过时走压缩池；失败时记录日志
// 并返回原文，请求本身永不因压缩失败而失败。
func (h *Handler) maybeCompress(ctx context.Context, asset Asset, contentType string, raw []byte) []byte {
	if !h.opts.Minify || h.pool == nil {
		return raw
	}
	if h.skipCompression(asset.Logical) {
		return raw
	}

	res := h.pool.Compress(ctx, compress.WorkItem{
		ContentType: contentType,
		Raw:         raw,
		Resolved:    asset.Resolved,
		Root:        h.resolver.Root(),
	})
	if res.Err != nil {
		h.logger.WithError(res.Err).WithFields(logrus.Fields{
			"action": "compress",
			"path":   asset.Logical,
		}).Warn("compress_fallback")
	}
	return res.Bytes
}

func (h *Handler) skipCompression(logical string) bool {
	for _, pattern := range h.opts.SkipPatterns {
		if ok, err := doublestar.Match(pattern, logical); err == nil && ok {
			return true
		}
	}
	return false
}

func (h *Handler) logServe(method, logical string, kind Kind, status int, started time.Time, err error) {
	fields := logging.RequestFields(method, logical, kind.String())
	fields["action"] = "asset_serve"
	fields["status"] = status
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if err != nil {
		fields["error"] = err.Error()
		h.logger.WithFields(fields).Error("asset_failed")
		return
	}
	h.logger.WithFields(fields).Info("asset_served")
}

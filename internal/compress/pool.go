package compress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// WorkItem 描述一次压缩任务。样式变换需要 Resolved/Root 来解析相对导入。
type WorkItem struct {
	ContentType string
	Raw         []byte
	Resolved    string
	Root        string
}

// Result 总是携带可直接响应的字节；Err 非空表示变换失败、已回退为原文。
type Result struct {
	Bytes []byte
	Err   error
}

type contentKind int

const (
	kindNone contentKind = iota
	kindScript
	kindStylesheet
)

func kindOf(contentType string) contentKind {
	switch {
	case strings.Contains(contentType, "javascript"):
		return kindScript
	case strings.HasPrefix(contentType, "text/css"):
		return kindStylesheet
	default:
		return kindNone
	}
}

// Pool 用固定数量的 worker 执行压缩；超出容量的提交会排队而不是被丢弃。
type Pool struct {
	workers     *ants.Pool
	transformer Transformer
	logger      *logrus.Logger
}

// NewPool 创建压缩池，size 在进程启动时确定且此后不变。transformer 传 nil
// 时使用默认实现。
func NewPool(size int, transformer Transformer, logger *logrus.Logger) (*Pool, error) {
	if size < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	if transformer == nil {
		transformer = NewTransformer()
	}
	workers, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Pool{workers: workers, transformer: transformer, logger: logger}, nil
}

// Size 返回 worker 数量，供诊断接口输出。
func (p *Pool) Size() int {
	return p.workers.Cap()
}

// Compress 提交任务并等待结果。不支持的类型原样返回；池已关闭或 ctx 取消
// 时回退原文并带上原因。
func (p *Pool) Compress(ctx context.Context, item WorkItem) Result {
	kind := kindOf(item.ContentType)
	if kind == kindNone {
		return Result{Bytes: item.Raw}
	}

	done := make(chan Result, 1)
	submitErr := p.workers.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Result{Bytes: item.Raw, Err: fmt.Errorf("transform panic: %v", r)}
			}
		}()
		done <- p.run(kind, item)
	})
	if submitErr != nil {
		return Result{Bytes: item.Raw, Err: submitErr}
	}

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Result{Bytes: item.Raw, Err: ctx.Err()}
	}
}

func (p *Pool) run(kind contentKind, item WorkItem) Result {
	var (
		out []byte
		err error
	)
	switch kind {
	case kindScript:
		out, err = p.transformer.Script(item.Raw)
	case kindStylesheet:
		out, err = p.transformer.Stylesheet(item.Raw, item.Resolved, item.Root)
	}
	if err != nil {
		return Result{Bytes: item.Raw, Err: err}
	}
	return Result{Bytes: out}
}

// Shutdown 排空在途任务并释放 worker；超时后强制释放。关闭后的提交会以
// 池关闭错误回退原文。
func (p *Pool) Shutdown(timeout time.Duration) error {
	if err := p.workers.ReleaseTimeout(timeout); err != nil {
		p.workers.Release()
		if p.logger != nil {
			p.logger.WithField("action", "pool_shutdown").Warn(err.Error())
		}
		return err
	}
	return nil
}

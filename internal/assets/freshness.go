package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultStatDepth 限定缺失文件向上回溯父目录寻找时间戳的层数。
const DefaultStatDepth = 3

// FreshnessRecord 描述一次新鲜度探测：LastModified 零值表示没有任何时间戳。
type FreshnessRecord struct {
	LastModified time.Time
	Exists       bool
}

// Oracle 为逻辑路径计算最后修改时间与存在性，每次请求重新计算，从不缓存。
type Oracle struct {
	root    string
	started time.Time
}

// NewOracle 以 root 为资源根目录构建探测器；加载器垫片使用进程启动时刻
// 作为固定时间戳。
func NewOracle(root string) *Oracle {
	return &Oracle{root: root, started: time.Now()}
}

// Stat 返回资产的新鲜度。虚拟文件优先于真实 stat：引导脚本取 js/ 与 css/
// 两棵目录的聚合最大 mtime，垫片取进程启动时间。普通文件缺失时在 depth
// 层数内回溯父目录，借其时间戳但仍报告不存在。
func (o *Oracle) Stat(ctx context.Context, asset Asset, depth int) (FreshnessRecord, error) {
	select {
	case <-ctx.Done():
		return FreshnessRecord{}, ctx.Err()
	default:
	}

	if depth < 1 {
		return FreshnessRecord{}, nil
	}

	switch asset.Kind {
	case KindBootstrap:
		latest, err := o.aggregateModTime(ctx)
		if err != nil {
			return FreshnessRecord{}, err
		}
		return FreshnessRecord{LastModified: latest, Exists: true}, nil
	case KindLoaderShim:
		return FreshnessRecord{LastModified: o.started, Exists: true}, nil
	}

	return statWithFallback(asset.Logical, asset.Resolved, depth)
}

func statWithFallback(logical, resolved string, depth int) (FreshnessRecord, error) {
	if depth < 1 || logical == "" || logical == "." || logical == "/" {
		return FreshnessRecord{}, nil
	}

	info, err := os.Stat(resolved)
	if err == nil {
		return FreshnessRecord{LastModified: info.ModTime(), Exists: info.Mode().IsRegular()}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return FreshnessRecord{}, err
	}

	parent, err := statWithFallback(path.Dir(logical), filepath.Dir(resolved), depth-1)
	if err != nil {
		return FreshnessRecord{}, err
	}
	return FreshnessRecord{LastModified: parent.LastModified, Exists: false}, nil
}

// aggregateModTime 并发 stat 脚本目录与样式目录的所有一级条目（加目录本身），
// 归并为最大 mtime。任何 stat 失败都会中止：不完整的聚合视图不可信。
func (o *Oracle) aggregateModTime(ctx context.Context) (time.Time, error) {
	var (
		mu     sync.Mutex
		latest time.Time
	)
	record := func(t time.Time) {
		mu.Lock()
		if t.After(latest) {
			latest = t
		}
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, dir := range []string{
		filepath.Join(o.root, scriptDirName),
		filepath.Join(o.root, styleDirName),
	} {
		g.Go(func() error {
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("aggregate scan %s: %w", dir, err)
			}
			record(info.ModTime())

			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("aggregate scan %s: %w", dir, err)
			}
			for _, entry := range entries {
				g.Go(func() error {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
					info, err := entry.Info()
					if err != nil {
						return fmt.Errorf("aggregate scan %s: %w", filepath.Join(dir, entry.Name()), err)
					}
					record(info.ModTime())
					return nil
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return time.Time{}, err
	}
	return latest, nil
}

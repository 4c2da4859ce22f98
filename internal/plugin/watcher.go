package plugin

import (
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher 监听插件根目录的增删事件，并在静默期后触发注册表重扫。
// 只监听一级目录：插件应作为完整目录整体移入或移出。
type Watcher struct {
	registry *Registry
	fsw      *fsnotify.Watcher
	logger   *logrus.Logger
	interval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher 为 registry 的根目录创建文件系统监听器。
func NewWatcher(registry *Registry, logger *logrus.Logger) (*Watcher, error) {
	if registry == nil || registry.Root() == "" {
		return nil, errors.New("registry has no plugin root to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(registry.Root()); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		registry: registry,
		fsw:      fsw,
		logger:   logger,
		interval: 200 * time.Millisecond,
	}, nil
}

// Start 消费文件系统事件直到 Close 被调用，应在独立 goroutine 中运行。
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.WithField("action", "plugin_watch").Warn(err.Error())
			}
		}
	}
}

// schedule 重置静默计时器，把密集事件合并为一次重扫。
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.interval, w.reload)
}

func (w *Watcher) reload() {
	if err := w.registry.Reload(); err != nil {
		if w.logger != nil {
			w.logger.WithField("action", "plugin_reload").Warn(err.Error())
		}
		return
	}
	if w.logger != nil {
		w.logger.WithFields(logrus.Fields{
			"action": "plugin_reload",
			"count":  w.registry.Len(),
		}).Info("插件列表已刷新")
	}
}

// Close 停止监听并释放资源。
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

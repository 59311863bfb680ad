package adaptation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultBaseTemplate is the built-in system instruction used when no
// template file is configured. A deployment normally ships its own file;
// this default keeps the gateway usable out of the box and carries the
// structural markers the rewrite validator checks for.
const defaultBaseTemplate = `【角色】
你是一名专业的医疗咨询助手，通过语音通话为用户提供健康咨询与分诊建议。

【回答要求】
1. 回答口语化、简短，适合语音播报，单次回答不超过三句话。
2. 先回应用户最关心的问题，再补充必要的背景信息。
3. 无法判断的情况建议用户线下就诊，不替代医生诊断。
4. 涉及急症症状（胸痛、呼吸困难、大出血等）时，立即建议拨打急救电话。

【边界】
只讨论医疗健康相关话题，与医疗无关的请求礼貌拒绝。`

// TemplateSource supplies the current base prompt template. It is safe for
// concurrent use; Current never blocks on I/O.
type TemplateSource struct {
	mu      sync.RWMutex
	current string
	path    string
	logger  *slog.Logger

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	stopped sync.Once
}

// NewTemplateSource creates a source serving the built-in default, or the
// contents of path when non-empty. The file is re-read on change via
// fsnotify so prompt tuning does not require a restart.
func NewTemplateSource(path string) (*TemplateSource, error) {
	ts := &TemplateSource{
		current: defaultBaseTemplate,
		path:    path,
		logger:  slog.Default().With("component", "adaptation.template"),
		stopCh:  make(chan struct{}),
	}

	if path == "" {
		return ts, nil
	}

	if err := ts.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create template watcher: %w", err)
	}
	// Watch the directory: editors replace files by rename, which drops a
	// watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch template directory: %w", err)
	}
	ts.watcher = watcher

	go ts.watch()

	return ts, nil
}

// Current returns the active base template.
func (ts *TemplateSource) Current() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.current
}

// reload reads the template file into memory.
func (ts *TemplateSource) reload() error {
	data, err := os.ReadFile(ts.path)
	if err != nil {
		return fmt.Errorf("failed to read prompt template %q: %w", ts.path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("prompt template %q is empty", ts.path)
	}

	ts.mu.Lock()
	ts.current = string(data)
	ts.mu.Unlock()

	ts.logger.Info("base prompt template loaded",
		"path", ts.path,
		"bytes", len(data),
	)
	return nil
}

// watch processes filesystem events with a short debounce so editor write
// bursts trigger a single reload.
func (ts *TemplateSource) watch() {
	var timer *time.Timer
	target := filepath.Clean(ts.path)

	for {
		select {
		case <-ts.stopCh:
			return
		case event, ok := <-ts.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(100*time.Millisecond, func() {
				if err := ts.reload(); err != nil {
					ts.logger.Error("template reload failed, keeping previous template",
						"error", err,
					)
				}
			})
		case err, ok := <-ts.watcher.Errors:
			if !ok {
				return
			}
			ts.logger.Error("template watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (ts *TemplateSource) Close() error {
	var err error
	ts.stopped.Do(func() {
		close(ts.stopCh)
		if ts.watcher != nil {
			err = ts.watcher.Close()
		}
	})
	return err
}

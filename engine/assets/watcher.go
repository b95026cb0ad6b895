package assets

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vklayout/engine/core"
	"github.com/spaghettifunk/vklayout/engine/renderer/vulkan"
)

// LayoutWatcher keeps a layout description in sync with its file. The
// directory holding the file is watched, so editors that replace the file
// on save are handled too.
type LayoutWatcher struct {
	path string

	mutex   sync.RWMutex
	current *vulkan.RuntimePipelineDesc

	onChange func(*vulkan.RuntimePipelineDesc)
	onError  func(error)

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
	isClosed bool
}

// NewLayoutWatcher loads path once and starts watching it. onChange runs on
// the watcher goroutine after every successful reload; onError receives
// reload and watch errors. Either callback may be nil.
func NewLayoutWatcher(path string, onChange func(*vulkan.RuntimePipelineDesc), onError func(error)) (*LayoutWatcher, error) {
	desc, err := LoadLayoutDesc(path)
	if err != nil {
		return nil, err
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	lw := &LayoutWatcher{
		path:     filepath.Clean(path),
		current:  desc,
		onChange: onChange,
		onError:  onError,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go lw.start()
	return lw, nil
}

// Current returns the last description that loaded successfully.
func (lw *LayoutWatcher) Current() *vulkan.RuntimePipelineDesc {
	lw.mutex.RLock()
	defer lw.mutex.RUnlock()
	return lw.current
}

func (lw *LayoutWatcher) Close() error {
	lw.mutex.Lock()
	if lw.isClosed {
		lw.mutex.Unlock()
		return errors.New("layout watcher already closed")
	}
	lw.isClosed = true
	lw.mutex.Unlock()

	close(lw.done)
	<-lw.stopped
	return nil
}

func (lw *LayoutWatcher) start() {
	defer close(lw.stopped)
	for {
		select {
		case e, ok := <-lw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != lw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				lw.reload()
			}

		case err, ok := <-lw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			lw.report(err)

		case <-lw.done:
			lw.fsnotify.Close()
			return
		}
	}
}

func (lw *LayoutWatcher) reload() {
	desc, err := LoadLayoutDesc(lw.path)
	if err != nil {
		core.LogWarn("Keeping previous layout, reload failed: %s", err)
		lw.report(err)
		return
	}

	lw.mutex.Lock()
	lw.current = desc
	lw.mutex.Unlock()

	core.LogInfo("Layout %s reloaded.", lw.path)
	if lw.onChange != nil {
		lw.onChange(desc)
	}
}

func (lw *LayoutWatcher) report(err error) {
	if lw.onError != nil {
		lw.onError(err)
	}
}

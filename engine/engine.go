package engine

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/vklayout/engine/assets"
	"github.com/spaghettifunk/vklayout/engine/core"
	"github.com/spaghettifunk/vklayout/engine/platform"
	"github.com/spaghettifunk/vklayout/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	mu           sync.Mutex
	currentStage Stage
	config       *ApplicationConfig
	platform     *platform.Platform
	context      *vulkan.VulkanContext
	builder      *LayoutBuilder
	metrics      *core.BuildMetrics

	reloads      chan *vulkan.RuntimePipelineDesc
	done         chan struct{}
	shutdownOnce sync.Once
}

func New(config *ApplicationConfig) (*Engine, error) {
	if config.LayoutPath == "" {
		return nil, errors.New("no layout description given")
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       config,
		platform:     platform.New(),
		metrics:      core.NewBuildMetrics(),
		reloads:      make(chan *vulkan.RuntimePipelineDesc, 1),
		done:         make(chan struct{}),
	}, nil
}

func (e *Engine) Initialize() error {
	e.setStage(EngineStageInitializing)

	if err := core.ConfigureLogging(e.config.Config.Log); err != nil {
		return err
	}
	if err := e.platform.Startup(); err != nil {
		return err
	}

	vc, err := vulkan.NewVulkanContext(e.config.Config.Renderer.ApplicationName, e.config.Config.Renderer.Validation)
	if err != nil {
		_ = e.platform.Shutdown()
		return err
	}
	e.context = vc
	e.builder = NewLayoutBuilder(vc.Device, e.metrics)

	e.setStage(EngineStageInitialized)
	return nil
}

// Run builds the layout once. In watch mode it then rebuilds on every change
// of the description file until Shutdown is called. Resources are released
// before Run returns.
func (e *Engine) Run() error {
	e.setStage(EngineStageRunning)
	defer e.teardown()

	if !e.config.Watch {
		desc, err := assets.LoadLayoutDesc(e.config.LayoutPath)
		if err != nil {
			return err
		}
		_, err = e.builder.Build(desc)
		return err
	}

	watcher, err := assets.NewLayoutWatcher(e.config.LayoutPath, e.onLayoutChanged, func(err error) {
		core.LogError("layout %s: %s", e.config.LayoutPath, err)
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	if _, err := e.builder.Build(watcher.Current()); err != nil {
		core.LogError("initial build failed: %s", err)
	}

	core.LogInfo("Watching %s for changes.", e.config.LayoutPath)
	for {
		select {
		case desc := <-e.reloads:
			if _, err := e.builder.Build(desc); err != nil {
				core.LogError("rebuild failed, keeping previous layout: %s", err)
			}
		case <-e.done:
			return nil
		}
	}
}

// Shutdown stops a watching Run. It is safe to call more than once.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.setStage(EngineStageShuttingDown)
		close(e.done)
	})
	return nil
}

func (e *Engine) Metrics() *core.BuildMetrics {
	return e.metrics
}

func (e *Engine) onLayoutChanged(desc *vulkan.RuntimePipelineDesc) {
	// Only the latest description matters.
	select {
	case <-e.reloads:
	default:
	}
	e.reloads <- desc
}

func (e *Engine) teardown() {
	if err := e.builder.Close(); err != nil {
		core.LogError(err.Error())
	}
	e.context.Destroy()
	if err := e.platform.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	core.LogInfo("Layouts built: %d, failed: %d, average build time: %s.",
		e.metrics.Builds(), e.metrics.Failures(), e.metrics.Average())
}

func (e *Engine) setStage(stage Stage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentStage = stage
}

func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

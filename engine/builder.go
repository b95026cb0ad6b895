package engine

import (
	"sync"

	"github.com/spaghettifunk/vklayout/engine/core"
	"github.com/spaghettifunk/vklayout/engine/renderer/vulkan"
)

// LayoutBuilder owns the pipeline layout currently built from a description
// and swaps it when a new description arrives.
type LayoutBuilder struct {
	mu      sync.Mutex
	device  *vulkan.VulkanDevice
	current *vulkan.PipelineLayout
	metrics *core.BuildMetrics
}

func NewLayoutBuilder(device *vulkan.VulkanDevice, metrics *core.BuildMetrics) *LayoutBuilder {
	return &LayoutBuilder{device: device, metrics: metrics}
}

// Build creates a pipeline layout from desc. On success the previous layout
// is destroyed; on failure it stays current.
func (b *LayoutBuilder) Build(desc vulkan.PipelineLayoutDesc) (*vulkan.PipelineLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clock := core.NewClock()
	clock.Start()
	layout, err := vulkan.NewPipelineLayout(b.device, desc)
	clock.Stop()
	b.metrics.Record(clock.Elapsed(), err)
	if err != nil {
		return nil, err
	}

	if b.current != nil {
		if err := b.current.Destroy(); err != nil {
			core.LogWarn("failed to destroy previous layout %s: %s", b.current.ID(), err)
		}
	}
	b.current = layout

	core.LogInfo("Built %s in %s (average %s).", layout, clock.Elapsed(), b.metrics.Average())
	core.LogInfo("Push constants use %d of %d bytes.", layout.PushConstantsSize(), b.device.PhysicalDevice().Limits().MaxPushConstantsSize())
	logLayout(layout)
	return layout, nil
}

func (b *LayoutBuilder) Current() *vulkan.PipelineLayout {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *LayoutBuilder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return nil
	}
	err := b.current.Destroy()
	b.current = nil
	return err
}

func logLayout(layout *vulkan.PipelineLayout) {
	for set := 0; ; set++ {
		setLayout, ok := layout.DescriptorSetLayout(set)
		if !ok {
			break
		}
		core.LogDebug("  set %d: %s", set, setLayout)
		for binding := 0; binding < setLayout.NumBindings(); binding++ {
			if d, ok := setLayout.Descriptor(binding); ok {
				core.LogDebug("    binding %d: %s", binding, d)
			}
		}
	}
	for i, r := range layout.PushConstantRanges() {
		core.LogDebug("  push constants %d: offset=%d size=%d stages=%s", i, r.Offset, r.Size, vulkan.ShaderStages(r.StageFlags))
	}
}

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vklayout/engine/core"
)

// DescriptorSetLayout wraps a VkDescriptorSetLayout. It is shared between
// the descriptions that provide it and the pipeline layouts that reference
// it; the native object is destroyed when the last reference is released.
type DescriptorSetLayout struct {
	device      *VulkanDevice
	handle      vk.DescriptorSetLayout
	descriptors []*DescriptorDesc
	refs        *core.RefCount
	objectID    uint32
}

// NewDescriptorSetLayout creates a set layout with one binding per entry of
// descriptors. A nil entry leaves that binding number unused.
func NewDescriptorSetLayout(device *VulkanDevice, descriptors []*DescriptorDesc) (*DescriptorSetLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, 0, len(descriptors))
	for binding, desc := range descriptors {
		if desc == nil {
			continue
		}
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         uint32(binding),
			DescriptorType:  desc.DescriptorType(),
			DescriptorCount: desc.ArrayCount,
			StageFlags:      desc.Stages.Flags(),
		})
	}

	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var handle vk.DescriptorSetLayout
	if err := device.SafeCall(DescriptorManagement, func() error {
		result := device.Pointers().CreateDescriptorSetLayout(device.InternalObject(), &createInfo, device.Allocator, &handle)
		return checkCreateResult("vkCreateDescriptorSetLayout", result)
	}); err != nil {
		return nil, err
	}

	kept := make([]*DescriptorDesc, len(descriptors))
	for i, desc := range descriptors {
		if desc != nil {
			d := *desc
			kept[i] = &d
		}
	}

	layout := &DescriptorSetLayout{
		device:      device.Retain(),
		handle:      handle,
		descriptors: kept,
	}
	layout.refs = core.NewRefCount(layout.destroy)
	layout.objectID = device.trackObject(layout)

	core.LogDebug("Descriptor set layout created with %d binding(s).", len(bindings))
	return layout, nil
}

func (l *DescriptorSetLayout) Device() *VulkanDevice {
	return l.device
}

func (l *DescriptorSetLayout) InternalObject() vk.DescriptorSetLayout {
	return l.handle
}

// NumBindings returns the number of binding slots, including unused ones.
func (l *DescriptorSetLayout) NumBindings() int {
	return len(l.descriptors)
}

func (l *DescriptorSetLayout) Descriptor(binding int) (DescriptorDesc, bool) {
	if binding < 0 || binding >= len(l.descriptors) || l.descriptors[binding] == nil {
		return DescriptorDesc{}, false
	}
	return *l.descriptors[binding], true
}

func (l *DescriptorSetLayout) Retain() *DescriptorSetLayout {
	l.refs.Retain()
	return l
}

func (l *DescriptorSetLayout) Release() {
	l.refs.Release()
}

func (l *DescriptorSetLayout) ReferenceCount() int32 {
	return l.refs.Count()
}

func (l *DescriptorSetLayout) destroy() {
	device := l.device
	_ = device.SafeCall(DescriptorManagement, func() error {
		device.Pointers().DestroyDescriptorSetLayout(device.InternalObject(), l.handle, device.Allocator)
		l.handle = nil
		return nil
	})
	device.untrackObject(l.objectID)
	device.Release()
}

func (l *DescriptorSetLayout) String() string {
	return fmt.Sprintf("DescriptorSetLayout{raw: %p, bindings: %d, refs: %d}", l.handle, len(l.descriptors), l.ReferenceCount())
}

func releaseSetLayouts(layouts []*DescriptorSetLayout) {
	for _, l := range layouts {
		l.Release()
	}
}

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/spaghettifunk/vklayout/engine/core"
	"github.com/spaghettifunk/vklayout/engine/math"
)

// PipelineLayout wraps a VkPipelineLayout, the descriptor sets and push
// constants shaders of a pipeline may use.
//
// The native object is owned by the PipelineLayout and destroyed by Destroy.
// The device and the descriptor set layouts it references are shared: the
// layout holds a reference to each of them until it is destroyed.
type PipelineLayout struct {
	id       uuid.UUID
	objectID uint32
	device   *VulkanDevice
	handle   vk.PipelineLayout
	layouts  []*DescriptorSetLayout
	ranges   []vk.PushConstantRange
	desc     PipelineLayoutDesc
}

// NewPipelineLayout validates desc against the limits of device, builds the
// descriptor set layouts the description does not provide and creates the
// native pipeline layout.
//
// It returns ErrMaxDescriptorSetsLimitExceeded, ErrMaxPushConstantsSizeExceeded,
// ErrInvalidPushConstant or an *OomError. On error nothing created along the
// way is left alive.
//
// It panics if a provided descriptor set layout belongs to another device, or
// if two push constant ranges of desc share a shader stage.
func NewPipelineLayout(device *VulkanDevice, desc PipelineLayoutDesc) (*PipelineLayout, error) {
	limits := device.PhysicalDevice().Limits()

	layouts, err := resolveSetLayouts(device, desc, limits)
	if err != nil {
		return nil, err
	}

	ranges, err := assemblePushConstants(desc, limits)
	if err != nil {
		releaseSetLayouts(layouts)
		return nil, err
	}
	if i, shared, ok := findStageOverlap(ranges); ok {
		releaseSetLayouts(layouts)
		panic(fmt.Sprintf("push constants range %d reuses shader stages %s", i, shared))
	}

	handle, err := buildPipelineLayout(device, layouts, ranges)
	if err != nil {
		releaseSetLayouts(layouts)
		return nil, err
	}

	pl := &PipelineLayout{
		id:      uuid.New(),
		device:  device.Retain(),
		handle:  handle,
		layouts: layouts,
		ranges:  ranges,
		desc:    desc,
	}
	pl.objectID = device.trackObject(pl)

	core.LogDebug("Pipeline layout %s created: %d set(s), %d push constant range(s).", pl.id, len(layouts), len(ranges))
	return pl, nil
}

// resolveSetLayouts returns one retained descriptor set layout per set of
// desc, in set order.
func resolveSetLayouts(device *VulkanDevice, desc PipelineLayoutDesc, limits Limits) ([]*DescriptorSetLayout, error) {
	numSets := desc.NumSets()
	layouts := make([]*DescriptorSetLayout, 0, numSets)

	for set := 0; set < numSets; set++ {
		if provided, ok := desc.ProvidedSetLayout(set); ok {
			if !provided.Device().Is(device) {
				releaseSetLayouts(layouts)
				panic(fmt.Sprintf("descriptor set layout for set %d belongs to device %p, not %p",
					set, provided.Device().InternalObject(), device.InternalObject()))
			}
			layouts = append(layouts, provided.Retain())
			continue
		}

		numBindings, _ := desc.NumBindingsInSet(set)
		descriptors := make([]*DescriptorDesc, numBindings)
		for binding := 0; binding < numBindings; binding++ {
			if d, ok := desc.Descriptor(set, binding); ok {
				descriptors[binding] = &d
			}
		}

		layout, err := NewDescriptorSetLayout(device, descriptors)
		if err != nil {
			releaseSetLayouts(layouts)
			return nil, fmt.Errorf("descriptor set layout %d: %w", set, err)
		}
		layouts = append(layouts, layout)
	}

	// TODO: check per-descriptor-type limits too (maxPerStageDescriptorUniformBuffers and friends).
	if len(layouts) > int(limits.MaxBoundDescriptorSets()) {
		releaseSetLayouts(layouts)
		return nil, ErrMaxDescriptorSetsLimitExceeded
	}
	return layouts, nil
}

// assemblePushConstants validates the push constant ranges of desc. Missing
// indices are skipped.
func assemblePushConstants(desc PipelineLayoutDesc, limits Limits) ([]vk.PushConstantRange, error) {
	numRanges := desc.NumPushConstantsRanges()
	ranges := make([]vk.PushConstantRange, 0, numRanges)

	for i := 0; i < numRanges; i++ {
		pc, ok := desc.PushConstantsRange(i)
		if !ok {
			continue
		}
		if pc.Stages.IsNone() || pc.Size == 0 || !math.IsMultipleOf(pc.Size, 4) {
			return nil, ErrInvalidPushConstant
		}
		if uint64(pc.Offset)+uint64(pc.Size) > uint64(limits.MaxPushConstantsSize()) {
			return nil, ErrMaxPushConstantsSizeExceeded
		}
		ranges = append(ranges, vk.PushConstantRange{
			StageFlags: pc.Stages.Flags(),
			Offset:     pc.Offset,
			Size:       pc.Size,
		})
	}

	return ranges, nil
}

// findStageOverlap returns the first range that reuses a stage bit of an
// earlier range, along with the shared stages.
func findStageOverlap(ranges []vk.PushConstantRange) (int, ShaderStages, bool) {
	seen := ShaderStagesNone
	for i, r := range ranges {
		stages := ShaderStages(r.StageFlags)
		if seen.Intersects(stages) {
			return i, seen & stages, true
		}
		seen = seen.Union(stages)
	}
	return 0, ShaderStagesNone, false
}

func buildPipelineLayout(device *VulkanDevice, layouts []*DescriptorSetLayout, ranges []vk.PushConstantRange) (vk.PipelineLayout, error) {
	setLayouts := make([]vk.DescriptorSetLayout, len(layouts))
	for i, l := range layouts {
		setLayouts[i] = l.InternalObject()
	}

	createInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}
	if len(ranges) > 0 {
		createInfo.PushConstantRangeCount = uint32(len(ranges))
		createInfo.PPushConstantRanges = ranges
	}

	var handle vk.PipelineLayout
	if err := device.SafeCall(PipelineManagement, func() error {
		result := device.Pointers().CreatePipelineLayout(device.InternalObject(), &createInfo, device.Allocator, &handle)
		return checkCreateResult("vkCreatePipelineLayout", result)
	}); err != nil {
		return nil, err
	}
	return handle, nil
}

// ID identifies the layout in logs.
func (pl *PipelineLayout) ID() uuid.UUID {
	return pl.id
}

// Desc returns the description the layout was created from.
func (pl *PipelineLayout) Desc() PipelineLayoutDesc {
	return pl.desc
}

func (pl *PipelineLayout) Device() *VulkanDevice {
	return pl.device
}

// Sys borrows the native handle. The returned value must not be used after
// Destroy.
func (pl *PipelineLayout) Sys() PipelineLayoutSys {
	return PipelineLayoutSys{handle: pl.handle}
}

// DescriptorSetLayout returns the layout of set index, or false if the
// pipeline layout has no such set.
func (pl *PipelineLayout) DescriptorSetLayout(index int) (*DescriptorSetLayout, bool) {
	if index < 0 || index >= len(pl.layouts) {
		return nil, false
	}
	return pl.layouts[index], true
}

// PushConstantRanges returns a copy of the ranges handed to the driver.
func (pl *PipelineLayout) PushConstantRanges() []vk.PushConstantRange {
	out := make([]vk.PushConstantRange, len(pl.ranges))
	copy(out, pl.ranges)
	return out
}

// PushConstantsSize returns the number of push constant bytes the layout
// addresses, rounded up to a 4 byte boundary.
func (pl *PipelineLayout) PushConstantsSize() uint32 {
	var end uint32
	for _, r := range pl.ranges {
		end = max(end, r.Offset+r.Size)
	}
	return math.AlignUp(end, 4)
}

func (pl *PipelineLayout) NumSets() int {
	return pl.desc.NumSets()
}

func (pl *PipelineLayout) NumBindingsInSet(set int) (int, bool) {
	return pl.desc.NumBindingsInSet(set)
}

func (pl *PipelineLayout) Descriptor(set, binding int) (DescriptorDesc, bool) {
	return pl.desc.Descriptor(set, binding)
}

func (pl *PipelineLayout) ProvidedSetLayout(set int) (*DescriptorSetLayout, bool) {
	return pl.desc.ProvidedSetLayout(set)
}

func (pl *PipelineLayout) NumPushConstantsRanges() int {
	return pl.desc.NumPushConstantsRanges()
}

func (pl *PipelineLayout) PushConstantsRange(index int) (PushConstantsRange, bool) {
	return pl.desc.PushConstantsRange(index)
}

func (pl *PipelineLayout) DescriptorByName(name string) (DescriptorLocation, bool) {
	if named, ok := pl.desc.(PipelineLayoutDescNames); ok {
		return named.DescriptorByName(name)
	}
	return DescriptorLocation{}, false
}

// Destroy releases the native pipeline layout, then the references held on
// the descriptor set layouts and on the device. Calling it again is a no-op.
func (pl *PipelineLayout) Destroy() error {
	if pl.handle == nil {
		return nil
	}
	device := pl.device
	if err := device.SafeCall(PipelineManagement, func() error {
		device.Pointers().DestroyPipelineLayout(device.InternalObject(), pl.handle, device.Allocator)
		pl.handle = nil
		return nil
	}); err != nil {
		return err
	}

	releaseSetLayouts(pl.layouts)
	pl.layouts = nil
	device.untrackObject(pl.objectID)
	device.Release()

	core.LogDebug("Pipeline layout %s destroyed.", pl.id)
	return nil
}

func (pl *PipelineLayout) String() string {
	return fmt.Sprintf("PipelineLayout{id: %s, raw: %p, device: %p, sets: %d, push constants: %d}",
		pl.id, pl.handle, pl.device.InternalObject(), len(pl.layouts), len(pl.ranges))
}

// PipelineLayoutSys is a borrowed native pipeline layout handle, for code
// that needs to reference a layout without owning it.
type PipelineLayoutSys struct {
	handle vk.PipelineLayout
}

func (s PipelineLayoutSys) InternalObject() vk.PipelineLayout {
	return s.handle
}
